package sensor

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ajviljoen/obsdata/categorical"
)

// ErrUnknownSensor is returned when a sensor name matches neither a stored
// series nor a virtual sensor pattern.
var ErrUnknownSensor = errors.New("unknown sensor")

// A Series is a raw discrete sensor: irregular sample times in seconds with
// the string value observed at each time.
type Series struct {
	Times  []float64
	Values []string
}

// A FloatSeries is a raw numeric sensor.
type FloatSeries struct {
	Times  []float64
	Values []float64
}

// A VirtualFunc computes a derived numeric sensor on demand. params holds the
// values captured by the placeholders of the pattern it was registered under.
type VirtualFunc func(c *Cache, params map[string]string) (FloatSeries, error)

// A Cache owns the raw sensor series of one observation and serves them as
// timelines on the observation's dump grid, building each timeline once on
// first access. Not safe for concurrent use; callers serialize access.
type Cache struct {
	grid    categorical.Grid
	props   PropertySet
	aliases map[string]string
	series  map[string]Series
	floats  map[string]FloatSeries
	virtual map[string]VirtualFunc
	built   map[string]*categorical.Categorical[string]
	log     *slog.Logger
}

// NewCache creates an empty cache over the given dump grid. A nil logger
// falls back to the default logger.
func NewCache(grid categorical.Grid, props PropertySet, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		grid:    grid,
		props:   props,
		aliases: make(map[string]string),
		series:  make(map[string]Series),
		floats:  make(map[string]FloatSeries),
		virtual: make(map[string]VirtualFunc),
		built:   make(map[string]*categorical.Categorical[string]),
		log:     log,
	}
}

// AddSeries stores the raw discrete series of a sensor.
func (c *Cache) AddSeries(name string, s Series) {
	c.series[name] = s
}

// AddFloatSeries stores the raw numeric series of a sensor.
func (c *Cache) AddFloatSeries(name string, s FloatSeries) {
	c.floats[name] = s
}

// AddAlias declares that sensor names ending in alias refer to the sensor
// with the same prefix ending in canonical.
func (c *Cache) AddAlias(alias, canonical string) {
	c.aliases[alias] = canonical
}

// AddVirtual registers a derived sensor under a name pattern. Pattern
// components of the form {param} match any single component and are passed to
// fn, so one registration covers e.g. the azimuth of every antenna.
func (c *Cache) AddVirtual(pattern string, fn VirtualFunc) {
	c.virtual[pattern] = fn
}

// resolve rewrites an aliased sensor name to its canonical form.
func (c *Cache) resolve(name string) string {
	for alias, canonical := range c.aliases {
		if strings.HasSuffix(name, alias) {
			return name[:len(name)-len(alias)] + canonical
		}
	}
	return name
}

// Get returns the categorical timeline of the named sensor, building and
// memoizing it on first access.
func (c *Cache) Get(name string) (*categorical.Categorical[string], error) {
	name = c.resolve(name)
	if tl, ok := c.built[name]; ok {
		return tl, nil
	}
	s, ok := c.series[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSensor, name)
	}
	tl, err := c.build(name, s)
	if err != nil {
		return nil, err
	}
	c.built[name] = tl
	return tl, nil
}

// GetWithFallback returns the timeline of the first candidate sensor that has
// a series, memoized under the canonical name. A fallback to a later
// candidate is logged.
func (c *Cache) GetWithFallback(canonical string, candidates []string) (*categorical.Categorical[string], error) {
	canonical = c.resolve(canonical)
	if tl, ok := c.built[canonical]; ok {
		return tl, nil
	}
	for _, cand := range candidates {
		cand = c.resolve(cand)
		s, ok := c.series[cand]
		if !ok {
			continue
		}
		if cand != canonical {
			c.log.Warn("sensor fallback", "requested", canonical, "using", cand)
		}
		tl, err := c.build(canonical, s)
		if err != nil {
			return nil, err
		}
		c.built[canonical] = tl
		return tl, nil
	}
	return nil, fmt.Errorf("%w: %q (no candidate available)", ErrUnknownSensor, canonical)
}

// GetRaw returns the stored raw discrete series of a sensor.
func (c *Cache) GetRaw(name string) (Series, error) {
	name = c.resolve(name)
	s, ok := c.series[name]
	if !ok {
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownSensor, name)
	}
	return s, nil
}

// GetFloat returns the numeric series of a sensor, computing and memoizing a
// virtual sensor when the name matches a registered pattern.
func (c *Cache) GetFloat(name string) (FloatSeries, error) {
	name = c.resolve(name)
	if s, ok := c.floats[name]; ok {
		return s, nil
	}
	for pattern, fn := range c.virtual {
		params, ok := matchPattern(pattern, name)
		if !ok {
			continue
		}
		s, err := fn(c, params)
		if err != nil {
			return FloatSeries{}, fmt.Errorf("virtual sensor %q: %w", name, err)
		}
		c.floats[name] = s
		return s, nil
	}
	return FloatSeries{}, fmt.Errorf("%w: %q", ErrUnknownSensor, name)
}

// build converts a raw series into a timeline using the sensor's properties.
func (c *Cache) build(name string, s Series) (*categorical.Categorical[string], error) {
	props, _ := c.props.Lookup(name)
	samples := make([]categorical.Sample[string], len(s.Times))
	for i, t := range s.Times {
		samples[i] = categorical.Sample[string]{Time: t, Value: s.Values[i]}
	}
	tl, err := categorical.Build(samples, c.grid, categorical.Options[string]{
		Greedy:     props.GreedyValues,
		Initial:    props.InitialValue,
		HasInitial: props.HasInitial,
		Transform:  props.Transform,
	})
	if err != nil {
		return nil, fmt.Errorf("sensor %q: %w", name, err)
	}
	return tl, nil
}

// matchPattern matches a sensor name against a pattern component-wise,
// capturing {param} placeholders.
func matchPattern(pattern, name string) (map[string]string, bool) {
	pp := strings.Split(pattern, "/")
	np := strings.Split(name, "/")
	if len(pp) != len(np) {
		return nil, false
	}
	params := make(map[string]string)
	for i, p := range pp {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			params[p[1:len(p)-1]] = np[i]
			continue
		}
		if p != np[i] {
			return nil, false
		}
	}
	return params, true
}

// Deg2Rad returns a virtual sensor that reads the underlying sensor named by
// expanding the {param} placeholders in format and converts its values from
// degrees to radians. Typical use is serving antenna pointing in radians from
// the raw position sensors reporting degrees.
func Deg2Rad(format string) VirtualFunc {
	return func(c *Cache, params map[string]string) (FloatSeries, error) {
		name := format
		for k, v := range params {
			name = strings.ReplaceAll(name, "{"+k+"}", v)
		}
		raw, err := c.GetFloat(name)
		if err != nil {
			return FloatSeries{}, err
		}
		out := FloatSeries{
			Times:  append([]float64(nil), raw.Times...),
			Values: make([]float64, len(raw.Values)),
		}
		for i, v := range raw.Values {
			out.Values[i] = v * math.Pi / 180
		}
		return out, nil
	}
}
