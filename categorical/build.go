package categorical

import (
	"fmt"
	"math"
	"sort"
)

// A Sample is one raw sensor reading: a timestamp in seconds and the
// discrete value observed at that time.
type Sample[V comparable] struct {
	Time  float64
	Value V
}

// A Grid describes the regular dump grid timelines are aligned to. Start is
// the timestamp at the midpoint of the first dump, Period the dump length in
// seconds and Length the number of dumps.
type Grid struct {
	Start  float64
	Period float64
	Length int
}

// Options configures Build. Greedy lists the values that dominate a dump
// shared with other samples. Initial, when HasInitial is set, is the value
// in force on dumps before the first sample; without it the first sample
// extends backward to dump 0. Transform, when non-nil, is applied to every
// raw value before grid mapping.
type Options[V comparable] struct {
	Greedy     []V
	Initial    V
	HasInitial bool
	Transform  func(V) V
}

// Build converts irregularly timestamped raw samples into a Categorical over
// grid. Each sample takes effect at the dump boundary nearest to its
// timestamp, clipped to the grid. Samples landing on the same dump are
// resolved by singleEventPerDump.
func Build[V comparable](samples []Sample[V], grid Grid, opt Options[V]) (*Categorical[V], error) {
	if grid.Period <= 0 || grid.Length <= 0 {
		return nil, fmt.Errorf("%w: invalid grid (period %g, length %d)",
			ErrMalformed, grid.Period, grid.Length)
	}
	if len(samples) == 0 {
		if !opt.HasInitial {
			return nil, fmt.Errorf("%w: no samples and no initial value", ErrMalformed)
		}
		return NewCategorical([]V{opt.Initial}, []int{0, grid.Length})
	}
	ordered := make([]Sample[V], len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Time < ordered[j].Time })

	greedy := make(map[V]bool, len(opt.Greedy))
	for _, v := range opt.Greedy {
		greedy[v] = true
	}
	values := make([]V, len(ordered))
	dumps := make([]int, len(ordered))
	flags := make([]bool, len(ordered))
	// The grid origin is half a period before the first dump midpoint, so
	// rounding snaps each sample to the nearest dump boundary.
	origin := grid.Start - 0.5*grid.Period
	for i, s := range ordered {
		v := s.Value
		if opt.Transform != nil {
			v = opt.Transform(v)
		}
		d := int(math.Round((s.Time - origin) / grid.Period))
		if d < 0 {
			d = 0
		} else if d >= grid.Length {
			d = grid.Length - 1
		}
		values[i], dumps[i], flags[i] = v, d, greedy[v]
	}
	keep := singleEventPerDump(dumps, flags)

	var segValues []V
	var events []int
	for _, i := range keep {
		if dumps[i] >= grid.Length {
			// A displaced run can be pushed off the end of the grid.
			continue
		}
		segValues = append(segValues, values[i])
		events = append(events, dumps[i])
	}
	if len(segValues) == 0 {
		if !opt.HasInitial {
			return nil, fmt.Errorf("%w: no samples left on the grid", ErrMalformed)
		}
		return NewCategorical([]V{opt.Initial}, []int{0, grid.Length})
	}
	if events[0] > 0 {
		if opt.HasInitial {
			segValues = append([]V{opt.Initial}, segValues...)
			events = append([]int{0}, events...)
		} else {
			events[0] = 0
		}
	}
	events = append(events, grid.Length)
	return NewCategorical(segValues, events)
}

// singleEventPerDump resolves samples sharing a dump to a single event per
// dump and returns the positions of the surviving samples. Within a run of
// samples on one dump, the last greedy sample wins the dump, or the last
// sample when the run holds no greedy member. A greedy sample displaced by
// another greedy sample still dominates the transition out of its dump: the
// run on the following dump is moved one dump later (dumps is adjusted in
// place), or discarded entirely when that dump already has a run of its own.
func singleEventPerDump(dumps []int, greedy []bool) []int {
	var keep []int
	pushed := -1
	i := 0
	for i < len(dumps) {
		j := i
		for j < len(dumps) && dumps[j] == dumps[i] {
			j++
		}
		d := dumps[i]
		if d == pushed {
			if j < len(dumps) && dumps[j] == d+1 {
				pushed = -1
				i = j
				continue
			}
			d++
			for k := i; k < j; k++ {
				dumps[k] = d
			}
		}
		pushed = -1
		win := j - 1
		ng := 0
		for k := i; k < j; k++ {
			if greedy[k] {
				win = k
				ng++
			}
		}
		keep = append(keep, win)
		if ng > 1 {
			pushed = d + 1
		}
		i = j
	}
	return keep
}
