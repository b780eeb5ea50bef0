/*
Package categorical implements run-length encoded timelines of discrete
sensor values aligned to a regular dump grid.

It defines the type Categorical, a compact event-indexed representation of a
sequence of discrete values, with methods for querying, editing and aligning
timelines against each other, and the function Build, which converts
irregularly timestamped raw sensor samples into a Categorical over a fixed
dump grid.

A Categorical is defined by three aligned sequences: the unique values ever
observed, a strictly increasing sequence of dump indices (events) marking the
points where the value changes, and a per-segment index into the unique
values. The first event is always 0 and the last event is the grid length, so
each adjacent event pair denotes the half-open dump range over which the
timeline holds one constant value.

Timelines are mutated in place and are not safe for concurrent use. Callers
needing concurrent access must serialize externally.
*/
package categorical
