// Package sensor builds categorical timelines from raw sensor series and
// caches them, driven by explicit per-sensor configuration records instead of
// per-call keyword arguments.
package sensor

import (
	"fmt"
	"io"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// A Transform is a pure function applied to each raw sample value before a
// sensor timeline is built.
type Transform func(string) string

// Properties configures how one sensor's raw samples become a timeline.
type Properties struct {
	// Transform rewrites raw values, e.g. collapsing detailed activity
	// states into a simpler vocabulary. Nil leaves values untouched.
	Transform Transform
	// GreedyValues win any dump they share with non-greedy samples.
	GreedyValues []string
	// InitialValue is in force before the first sample when HasInitial is
	// set; otherwise the first sample extends backward to dump 0.
	InitialValue string
	HasInitial   bool
	// Categorical marks sensors served as discrete timelines.
	Categorical bool
}

// A PropertySet maps sensor-name patterns to properties. A pattern is either
// an exact sensor name or "*suffix", matching any name ending in suffix.
type PropertySet map[string]Properties

// Lookup returns the properties for a sensor name. An exact pattern wins over
// suffix patterns; among suffix patterns the longest match wins.
func (p PropertySet) Lookup(name string) (Properties, bool) {
	if props, ok := p[name]; ok {
		return props, true
	}
	best := -1
	var found Properties
	for pat, props := range p {
		if !strings.HasPrefix(pat, "*") {
			continue
		}
		suffix := pat[1:]
		if strings.HasSuffix(name, suffix) && len(suffix) > best {
			best = len(suffix)
			found = props
		}
	}
	return found, best >= 0
}

var transforms = map[string]Transform{}

// RegisterTransform makes a named transform available to properties files.
// Registering a name again replaces the previous transform.
func RegisterTransform(name string, t Transform) {
	transforms[name] = t
}

// LookupTransform returns a registered transform by name.
func LookupTransform(name string) (Transform, bool) {
	t, ok := transforms[name]
	return t, ok
}

// simplifyActivity collapses the antenna activity vocabulary to the states
// that matter for scan partitioning. Unlisted states count as stopped.
var simplifyActivity = map[string]string{
	"scan_ready":    "slew",
	"scan":          "scan",
	"scan_complete": "scan",
	"load_scan":     "scan",
	"track":         "track",
	"slew":          "slew",
}

func init() {
	RegisterTransform("simplify_activity", func(v string) string {
		if s, ok := simplifyActivity[v]; ok {
			return s
		}
		return "stop"
	})
}

// propertiesFile is the YAML layout of a sensor properties file:
//
//	sensors:
//	  "*activity":
//	    transform: simplify_activity
//	    greedy: [slew, stop]
//	    initial: slew
//	    categorical: true
type propertiesFile struct {
	Sensors map[string]struct {
		Transform   string   `yaml:"transform"`
		Greedy      []string `yaml:"greedy"`
		Initial     *string  `yaml:"initial"`
		Categorical bool     `yaml:"categorical"`
	} `yaml:"sensors"`
}

// LoadProperties reads a YAML properties file, resolving transform names
// through the registry.
func LoadProperties(r io.Reader) (PropertySet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var file propertiesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("cannot parse sensor properties: %w", err)
	}
	set := make(PropertySet, len(file.Sensors))
	for pattern, entry := range file.Sensors {
		props := Properties{
			GreedyValues: entry.Greedy,
			Categorical:  entry.Categorical,
		}
		if entry.Transform != "" {
			t, ok := LookupTransform(entry.Transform)
			if !ok {
				return nil, fmt.Errorf("sensor pattern %q: unknown transform %q", pattern, entry.Transform)
			}
			props.Transform = t
		}
		if entry.Initial != nil {
			props.InitialValue = *entry.Initial
			props.HasInitial = true
		}
		set[pattern] = props
	}
	return set, nil
}
