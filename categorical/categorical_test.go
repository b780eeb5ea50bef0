package categorical

import (
	"errors"
	"reflect"
	"testing"
)

func mustTimeline(t *testing.T, values []string, events []int) *Categorical[string] {
	t.Helper()
	c, err := NewCategorical(values, events)
	if err != nil {
		t.Fatalf("got error %s, want error nil", err)
	}
	return c
}

func assertTimeline[V comparable](t *testing.T, c *Categorical[V], values []V, events, indices []int) {
	t.Helper()
	if got := c.UniqueValues(); !reflect.DeepEqual(got, values) {
		t.Fatalf("unique values:\ngot  %v\nwant %v", got, values)
	}
	if got := c.Events(); !reflect.DeepEqual(got, events) {
		t.Fatalf("events:\ngot  %v\nwant %v", got, events)
	}
	if got := c.Indices(); !reflect.DeepEqual(got, indices) {
		t.Fatalf("indices:\ngot  %v\nwant %v", got, indices)
	}
}

func TestNewCategorical(t *testing.T) {
	c := mustTimeline(t, []string{"slew", "track", "track", "slew"}, []int{0, 2, 4, 7, 10})
	assertTimeline(t, c, []string{"slew", "track"}, []int{0, 2, 7, 10}, []int{0, 1, 0})
}

func TestNewCategoricalMalformed(t *testing.T) {
	tests := []struct {
		id     int
		values []string
		events []int
	}{
		{1, []string{}, []int{0}},
		{2, []string{"a", "b"}, []int{0, 5}},
		{3, []string{"a", "b"}, []int{1, 3, 5}},
		{4, []string{"a", "b"}, []int{0, 3, 3}},
		{5, []string{"a", "b"}, []int{0, 4, 3}},
	}
	for _, tt := range tests {
		if _, err := NewCategorical(tt.values, tt.events); !errors.Is(err, ErrMalformed) {
			t.Fatalf("test %d: got error %v, want ErrMalformed", tt.id, err)
		}
	}
}

func TestAt(t *testing.T) {
	c := mustTimeline(t, []string{"slew", "track", "slew"}, []int{0, 2, 6, 10})
	tests := []struct {
		id   int
		dump int
		want string
	}{
		{1, 0, "slew"},
		{2, 1, "slew"},
		{3, 2, "track"},
		{4, 5, "track"},
		{5, 6, "slew"},
		{6, 9, "slew"},
	}
	for _, tt := range tests {
		got, err := c.At(tt.dump)
		if err != nil {
			t.Fatalf("test %d: got error %s, want error nil", tt.id, err)
		}
		if got != tt.want {
			t.Fatalf("test %d: got %q, want %q", tt.id, got, tt.want)
		}
	}
	if _, err := c.At(10); err == nil {
		t.Fatal("got error nil, want out of range error")
	}
	if _, err := c.At(-1); err == nil {
		t.Fatal("got error nil, want out of range error")
	}
}

func TestSegmentCoverage(t *testing.T) {
	c := mustTimeline(t, []string{"a", "b", "a", "c"}, []int{0, 3, 5, 9, 12})
	total := 0
	segs := c.Segments()
	for i, s := range segs {
		if s.Stop <= s.Start {
			t.Fatalf("segment %d is empty: %+v", i, s)
		}
		if i > 0 && segs[i-1].Value == s.Value {
			t.Fatalf("segments %d and %d share value %q", i-1, i, s.Value)
		}
		total += s.Stop - s.Start
	}
	if total != c.NumDumps() {
		t.Fatalf("got coverage %d, want %d", total, c.NumDumps())
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		id      int
		event   int
		value   string
		values  []string
		events  []int
		indices []int
	}{
		// Split a segment in the middle.
		{1, 4, "stop", []string{"slew", "track", "stop"}, []int{0, 2, 4, 6, 10}, []int{0, 1, 2, 0}},
		// Override the value of an existing boundary.
		{2, 2, "stop", []string{"slew", "track", "stop"}, []int{0, 2, 6, 10}, []int{0, 2, 0}},
		// Override with the surrounding value merges all three segments.
		{3, 2, "slew", []string{"slew", "track"}, []int{0, 10}, []int{0}},
		// Boundary 0 changes the opening segment.
		{4, 0, "stop", []string{"slew", "track", "stop"}, []int{0, 2, 6, 10}, []int{2, 1, 0}},
	}
	for _, tt := range tests {
		c := mustTimeline(t, []string{"slew", "track", "slew"}, []int{0, 2, 6, 10})
		if err := c.Add(tt.event, tt.value); err != nil {
			t.Fatalf("test %d: got error %s, want error nil", tt.id, err)
		}
		if got := c.Events(); !reflect.DeepEqual(got, tt.events) {
			t.Fatalf("test %d: events:\ngot  %v\nwant %v", tt.id, got, tt.events)
		}
		if got := c.Indices(); !reflect.DeepEqual(got, tt.indices) {
			t.Fatalf("test %d: indices:\ngot  %v\nwant %v", tt.id, got, tt.indices)
		}
		if got := c.UniqueValues(); !reflect.DeepEqual(got, tt.values) {
			t.Fatalf("test %d: unique values:\ngot  %v\nwant %v", tt.id, got, tt.values)
		}
	}
}

func TestAddOutOfRange(t *testing.T) {
	c := mustTimeline(t, []string{"a", "b"}, []int{0, 2, 4})
	if err := c.Add(4, "c"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("got error %v, want ErrMalformed", err)
	}
}

func TestRemove(t *testing.T) {
	c := mustTimeline(t, []string{"", "cal", "", "raster", ""}, []int{0, 2, 4, 6, 8, 10})
	c.Remove("")
	// The leading removed segment is absorbed into its successor, the
	// others into their predecessors.
	assertTimeline(t, c, []string{"cal", "raster"}, []int{0, 6, 10}, []int{0, 1})
	if c.NumDumps() != 10 {
		t.Fatalf("got coverage %d, want 10", c.NumDumps())
	}
}

func TestRemoveLastValueIsNoop(t *testing.T) {
	c := mustTimeline(t, []string{"only"}, []int{0, 5})
	c.Remove("only")
	assertTimeline(t, c, []string{"only"}, []int{0, 5}, []int{0})
}

func TestRemoveUnknownValueIsNoop(t *testing.T) {
	c := mustTimeline(t, []string{"a", "b"}, []int{0, 2, 5})
	c.Remove("missing")
	assertTimeline(t, c, []string{"a", "b"}, []int{0, 2, 5}, []int{0, 1})
}

func TestRemoveMergesNeighbours(t *testing.T) {
	c := mustTimeline(t, []string{"a", "b", "a"}, []int{0, 3, 6, 9})
	c.Remove("b")
	assertTimeline(t, c, []string{"a"}, []int{0, 9}, []int{0})
}

func TestAlign(t *testing.T) {
	c := mustTimeline(t, []string{"a", "b", "c"}, []int{0, 3, 7, 12})
	if err := c.Align([]int{0, 4, 8, 12}); err != nil {
		t.Fatalf("got error %s, want error nil", err)
	}
	assertTimeline(t, c, []string{"a", "b", "c"}, []int{0, 4, 8, 12}, []int{0, 1, 2})
}

func TestAlignTiesTowardLowerIndex(t *testing.T) {
	c := mustTimeline(t, []string{"a", "b"}, []int{0, 5, 12})
	// 5 is equidistant from 4 and 6.
	if err := c.Align([]int{0, 4, 6, 12}); err != nil {
		t.Fatalf("got error %s, want error nil", err)
	}
	assertTimeline(t, c, []string{"a", "b"}, []int{0, 4, 12}, []int{0, 1})
}

func TestAlignCollapsesLaterWins(t *testing.T) {
	c := mustTimeline(t, []string{"a", "b", "c"}, []int{0, 5, 6, 12})
	// Both interior boundaries snap to 6: the short b segment vanishes and
	// c keeps the boundary.
	if err := c.Align([]int{0, 6, 12}); err != nil {
		t.Fatalf("got error %s, want error nil", err)
	}
	assertTimeline(t, c, []string{"a", "b", "c"}, []int{0, 6, 12}, []int{0, 2})
}

func TestAlignMalformedReference(t *testing.T) {
	c := mustTimeline(t, []string{"a", "b"}, []int{0, 5, 12})
	tests := []struct {
		id  int
		ref []int
	}{
		{1, nil},
		{2, []int{0, 13}},
		{3, []int{0, 4, 4}},
		{4, []int{-1, 4}},
	}
	for _, tt := range tests {
		if err := c.Align(tt.ref); !errors.Is(err, ErrMalformed) {
			t.Fatalf("test %d: got error %v, want ErrMalformed", tt.id, err)
		}
	}
}

func TestAddUnmatched(t *testing.T) {
	c := mustTimeline(t, []string{"scan", "track"}, []int{0, 6, 12})
	if err := c.AddUnmatched([]int{0, 3, 6, 9, 12}); err != nil {
		t.Fatalf("got error %s, want error nil", err)
	}
	// Duplicate adjacent values persist deliberately: the timeline gains
	// structure without changing content.
	if got, want := c.Events(), []int{0, 3, 6, 9, 12}; !reflect.DeepEqual(got, want) {
		t.Fatalf("events:\ngot  %v\nwant %v", got, want)
	}
	if got, want := c.Indices(), []int{0, 0, 1, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("indices:\ngot  %v\nwant %v", got, want)
	}
	for dump, want := range map[int]string{0: "scan", 5: "scan", 6: "track", 11: "track"} {
		got, err := c.At(dump)
		if err != nil {
			t.Fatalf("got error %s, want error nil", err)
		}
		if got != want {
			t.Fatalf("dump %d: got %q, want %q", dump, got, want)
		}
	}
}

func TestDropFirstSegment(t *testing.T) {
	c := mustTimeline(t, []string{"stop", "slew", "track"}, []int{0, 1, 4, 10})
	c.DropFirstSegment()
	assertTimeline(t, c, []string{"stop", "slew", "track"}, []int{0, 4, 10}, []int{1, 2})

	single := mustTimeline(t, []string{"track"}, []int{0, 10})
	single.DropFirstSegment()
	assertTimeline(t, single, []string{"track"}, []int{0, 10}, []int{0})
}
