// Package scan partitions an observation into scans, compound scans and
// targets by reconciling the independently recorded antenna activity, label
// and target timelines onto one consistent set of boundaries.
package scan

import (
	"fmt"
	"log/slog"

	"github.com/ajviljoen/obsdata/categorical"
)

// A Span is one scan: its index, the antenna state, the compound-scan label
// and the target in force, and the dump range it covers.
type Span struct {
	Index  int
	State  string
	Label  string
	Target string
	Start  int
	Stop   int
}

// A Partition holds the reconciled timelines of one observation. State,
// Label and Target are the inputs after reconciliation; the index timelines
// number scans, compound scans and targets per dump.
type Partition struct {
	State         *categorical.Categorical[string]
	Label         *categorical.Categorical[string]
	Target        *categorical.Categorical[string]
	ScanIndex     *categorical.Categorical[int]
	CompScanIndex *categorical.Categorical[int]
	TargetIndex   *categorical.Categorical[int]
}

// NewPartition reconciles the three timelines, which must cover the same
// dump grid. The inputs are modified in place. A nil logger falls back to
// the default logger.
//
// Scan boundaries come from the antenna state, extended with label
// boundaries that have no state counterpart, so a new label set mid-scan
// starts a new scan. Label and target boundaries are then snapped onto the
// scan boundaries. Two recording quirks are repaired first: a state timeline
// whose second segment is a slew starting on dump 1 absorbs the meaningless
// first dump, and so does a target timeline opening with a blank target.
func NewPartition(state, label, target *categorical.Categorical[string], log *slog.Logger) (*Partition, error) {
	if log == nil {
		log = slog.Default()
	}
	n := state.NumDumps()
	if label.NumDumps() != n || target.NumDumps() != n {
		return nil, fmt.Errorf("%w: timelines cover %d, %d and %d dumps",
			categorical.ErrMalformed, n, label.NumDumps(), target.NumDumps())
	}

	if state.Len() > 1 && state.Events()[1] == 1 {
		if v, err := state.At(1); err == nil && v == "slew" {
			state.DropFirstSegment()
			log.Debug("absorbed dump 0 into the opening slew")
		}
	}

	if len(label.UniqueValues()) > 1 {
		label.Remove("")
	}
	if err := state.AddUnmatched(label.Events()); err != nil {
		return nil, err
	}
	scanIndex, err := indexTimeline(state.Events())
	if err != nil {
		return nil, err
	}

	if err := label.Align(state.Events()); err != nil {
		return nil, err
	}
	compScanIndex, err := indexTimeline(label.Events())
	if err != nil {
		return nil, err
	}

	if target.Len() > 1 {
		if v, err := target.At(0); err == nil && v == "" {
			target.DropFirstSegment()
			log.Debug("dropped leading blank target")
		}
	}
	if err := target.Align(state.Events()); err != nil {
		return nil, err
	}
	targetIndex, err := categorical.NewCategorical(target.Indices(), target.Events())
	if err != nil {
		return nil, err
	}

	return &Partition{
		State:         state,
		Label:         label,
		Target:        target,
		ScanIndex:     scanIndex,
		CompScanIndex: compScanIndex,
		TargetIndex:   targetIndex,
	}, nil
}

// Scans returns the partition as per-scan spans in dump order.
func (p *Partition) Scans() []Span {
	segs := p.ScanIndex.Segments()
	out := make([]Span, len(segs))
	for i, seg := range segs {
		state, _ := p.State.At(seg.Start)
		label, _ := p.Label.At(seg.Start)
		target, _ := p.Target.At(seg.Start)
		out[i] = Span{
			Index:  seg.Value,
			State:  state,
			Label:  label,
			Target: target,
			Start:  seg.Start,
			Stop:   seg.Stop,
		}
	}
	return out
}

// indexTimeline numbers the segments delimited by events from zero.
func indexTimeline(events []int) (*categorical.Categorical[int], error) {
	values := make([]int, len(events)-1)
	for i := range values {
		values[i] = i
	}
	return categorical.NewCategorical(values, events)
}
