package categorical

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformed is returned when an operation would violate the timeline
// invariants: events strictly increasing from 0 to the grid length, one value
// per segment, no zero-length segments.
var ErrMalformed = errors.New("malformed timeline")

// A Segment is a half-open dump range [Start, Stop) over which a timeline
// holds one constant value.
type Segment[V comparable] struct {
	Start int
	Stop  int
	Value V
}

// A Categorical represents a discrete-valued timeline as run-length encoded
// segments on a dump grid. The unique values ever observed are kept in
// first-seen order, events holds the dump index of each value change plus a
// final sentinel equal to the grid length, and indices maps each segment to
// its value.
type Categorical[V comparable] struct {
	values  []V
	events  []int
	indices []int
}

// NewCategorical creates a timeline from per-segment values and their dump
// boundaries. events must start at 0, increase strictly and have exactly one
// more element than values; its last element is the grid length. Consecutive
// equal values are collapsed into a single segment.
func NewCategorical[V comparable](values []V, events []int) (*Categorical[V], error) {
	if len(values) == 0 || len(events) != len(values)+1 {
		return nil, fmt.Errorf("%w: %d values need %d events, got %d",
			ErrMalformed, len(values), len(values)+1, len(events))
	}
	if events[0] != 0 {
		return nil, fmt.Errorf("%w: first event is %d, want 0", ErrMalformed, events[0])
	}
	for i := 1; i < len(events); i++ {
		if events[i] <= events[i-1] {
			return nil, fmt.Errorf("%w: events not strictly increasing at index %d", ErrMalformed, i)
		}
	}
	c := &Categorical[V]{}
	seen := make(map[V]int, len(values))
	for i, v := range values {
		k, ok := seen[v]
		if !ok {
			k = len(c.values)
			seen[v] = k
			c.values = append(c.values, v)
		}
		if len(c.indices) > 0 && c.indices[len(c.indices)-1] == k {
			// Same value as the previous segment: extend it.
			continue
		}
		c.events = append(c.events, events[i])
		c.indices = append(c.indices, k)
	}
	c.events = append(c.events, events[len(events)-1])
	return c, nil
}

// Len returns the number of segments in the timeline.
func (c *Categorical[V]) Len() int {
	return len(c.indices)
}

// NumDumps returns the length of the dump grid covered by the timeline.
func (c *Categorical[V]) NumDumps() int {
	return c.events[len(c.events)-1]
}

// UniqueValues returns a copy of the distinct values observed in the
// timeline, in first-seen order.
func (c *Categorical[V]) UniqueValues() []V {
	out := make([]V, len(c.values))
	copy(out, c.values)
	return out
}

// Events returns a copy of the segment boundaries, including the leading 0
// and the final sentinel.
func (c *Categorical[V]) Events() []int {
	out := make([]int, len(c.events))
	copy(out, c.events)
	return out
}

// Indices returns a copy of the per-segment indices into UniqueValues.
func (c *Categorical[V]) Indices() []int {
	out := make([]int, len(c.indices))
	copy(out, c.indices)
	return out
}

// At returns the value in force at the given dump.
func (c *Categorical[V]) At(dump int) (V, error) {
	var zero V
	if dump < 0 || dump >= c.NumDumps() {
		return zero, fmt.Errorf("dump %d outside [0, %d)", dump, c.NumDumps())
	}
	i := sort.SearchInts(c.events, dump+1) - 1
	return c.values[c.indices[i]], nil
}

// Segments returns the timeline as a sequence of constant-valued dump ranges.
func (c *Categorical[V]) Segments() []Segment[V] {
	out := make([]Segment[V], len(c.indices))
	for i, k := range c.indices {
		out[i] = Segment[V]{Start: c.events[i], Stop: c.events[i+1], Value: c.values[k]}
	}
	return out
}

// Add inserts a boundary at event and sets the value in force from event up
// to the next existing boundary to v, splitting the enclosing segment if
// needed or overriding the segment that already starts there. Adjacent
// segments left holding the same value are merged, so redundant duplicates
// never persist after Add.
func (c *Categorical[V]) Add(event int, v V) error {
	if event < 0 || event >= c.NumDumps() {
		return fmt.Errorf("%w: event %d outside [0, %d)", ErrMalformed, event, c.NumDumps())
	}
	k := c.internValue(v)
	i := sort.SearchInts(c.events, event)
	if c.events[i] == event {
		c.indices[i] = k
	} else {
		c.insertBoundary(i, event, k)
	}
	c.collapse()
	return nil
}

// Remove drops every segment holding v. Each removed dump range is absorbed
// into the preceding segment, or into the following one when the removed
// segment opens the timeline, so total coverage never changes. Removing the
// only remaining value is a no-op, as is removing an unknown value.
func (c *Categorical[V]) Remove(v V) {
	k := c.valueIndex(v)
	if k < 0 {
		return
	}
	other := false
	for _, idx := range c.indices {
		if idx != k {
			other = true
			break
		}
	}
	if !other {
		return
	}
	events := []int{0}
	var indices []int
	for i, idx := range c.indices {
		if idx == k {
			continue
		}
		if len(indices) > 0 {
			events = append(events, c.events[i])
		}
		indices = append(indices, idx)
	}
	events = append(events, c.NumDumps())
	c.events, c.indices = events, indices
	c.collapse()
	c.values = append(c.values[:k], c.values[k+1:]...)
	for i, idx := range c.indices {
		if idx > k {
			c.indices[i] = idx - 1
		}
	}
}

// Align snaps each interior boundary of the timeline to the closest boundary
// in ref, ties toward the lower index. Boundaries collapsing onto the same
// reference point merge into one, with the later segment winning the value
// at that point. ref must be strictly increasing within the dump grid.
func (c *Categorical[V]) Align(ref []int) error {
	if err := validateRef(ref, c.NumDumps()); err != nil {
		return err
	}
	for i := 1; i < len(c.events)-1; i++ {
		c.events[i] = nearest(ref, c.events[i])
	}
	c.dropEmpty()
	c.collapse()
	return nil
}

// AddUnmatched inserts every reference boundary that has no counterpart in
// the timeline, splitting the segment in force there without changing its
// value. The duplicate adjacent values this creates are deliberate: they let
// a reference partition impose extra structure (such as a label set midway
// through a scan) without altering content.
func (c *Categorical[V]) AddUnmatched(ref []int) error {
	if err := validateRef(ref, c.NumDumps()); err != nil {
		return err
	}
	for _, e := range ref {
		if e <= 0 || e >= c.NumDumps() {
			continue
		}
		i := sort.SearchInts(c.events, e)
		if c.events[i] == e {
			continue
		}
		c.insertBoundary(i, e, c.indices[i-1])
	}
	return nil
}

// DropFirstSegment absorbs the first segment into the one that follows it,
// extending the second segment back to dump 0. It is a no-op on a single
// segment timeline.
func (c *Categorical[V]) DropFirstSegment() {
	if len(c.indices) < 2 {
		return
	}
	c.events = append(c.events[:1], c.events[2:]...)
	c.indices = c.indices[1:]
	c.collapse()
}

// insertBoundary splits the segment preceding position i, giving the new
// segment [event, events[i]) the value at index k.
func (c *Categorical[V]) insertBoundary(i, event, k int) {
	c.events = append(c.events, 0)
	copy(c.events[i+1:], c.events[i:])
	c.events[i] = event
	c.indices = append(c.indices, 0)
	copy(c.indices[i+1:], c.indices[i:])
	c.indices[i] = k
}

// collapse merges adjacent segments holding the same value.
func (c *Categorical[V]) collapse() {
	events := []int{0}
	var indices []int
	for i, k := range c.indices {
		if len(indices) > 0 && indices[len(indices)-1] == k {
			continue
		}
		if len(indices) > 0 {
			events = append(events, c.events[i])
		}
		indices = append(indices, k)
	}
	events = append(events, c.NumDumps())
	c.events, c.indices = events, indices
}

// dropEmpty removes zero-length segments, keeping the later value wherever
// boundaries have collapsed onto the same dump.
func (c *Categorical[V]) dropEmpty() {
	events := []int{0}
	var indices []int
	for i, k := range c.indices {
		if c.events[i+1] <= c.events[i] {
			continue
		}
		if len(indices) > 0 {
			events = append(events, c.events[i])
		}
		indices = append(indices, k)
	}
	events = append(events, c.NumDumps())
	c.events, c.indices = events, indices
}

// valueIndex returns the index of v in the unique values, or -1.
func (c *Categorical[V]) valueIndex(v V) int {
	for i, x := range c.values {
		if x == v {
			return i
		}
	}
	return -1
}

// internValue returns the index of v in the unique values, adding it first
// if unknown.
func (c *Categorical[V]) internValue(v V) int {
	if i := c.valueIndex(v); i >= 0 {
		return i
	}
	c.values = append(c.values, v)
	return len(c.values) - 1
}

// nearest returns the element of ref closest to x, ties toward the lower one.
func nearest(ref []int, x int) int {
	i := sort.SearchInts(ref, x)
	if i == 0 {
		return ref[0]
	}
	if i == len(ref) {
		return ref[len(ref)-1]
	}
	lo, hi := ref[i-1], ref[i]
	if x-lo <= hi-x {
		return lo
	}
	return hi
}

// validateRef checks that reference boundaries are strictly increasing and
// fall within the dump grid.
func validateRef(ref []int, numDumps int) error {
	if len(ref) == 0 {
		return fmt.Errorf("%w: empty reference boundaries", ErrMalformed)
	}
	for i, e := range ref {
		if e < 0 || e > numDumps {
			return fmt.Errorf("%w: reference boundary %d outside [0, %d]", ErrMalformed, e, numDumps)
		}
		if i > 0 && e <= ref[i-1] {
			return fmt.Errorf("%w: reference boundaries not strictly increasing at index %d", ErrMalformed, i)
		}
	}
	return nil
}
