package stats

import (
	"sort"

	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/pkg/errors"
	"github.com/rdleal/intervalst/interval"
)

// Kinds of alignment events.
const (
	Mismatch  = "mismatch"
	Insertion = "insertion"
	Deletion  = "deletion"
)

// Event is a mismatch or a counted gap of one comparison, located on the
// reference. Start and End are inclusive; an insertion sits before the
// reference base at Start.
type Event struct {
	Ref   string `json:"ref"`
	Query string `json:"query"`
	Kind  string `json:"kind"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Size  int    `json:"size"`
}

type span [2]int

// refEvents holds the events of one reference. The tree stores each
// distinct span once; events sharing a span are listed in bySpan.
type refEvents struct {
	tree   *interval.SearchTree[span, int]
	bySpan map[span][]Event
}

// EventIndex stores the events of many comparisons in one interval tree
// per reference.
type EventIndex struct {
	refs map[string]*refEvents
	n    int
}

// NewEventIndex returns an empty index.
func NewEventIndex() *EventIndex {
	return &EventIndex{refs: make(map[string]*refEvents)}
}

func cmpInt(x, y int) int { return x - y }

// Add indexes the mismatches and counted gaps of c.
func (x *EventIndex) Add(c *profiler.Comparison) error {
	re, ok := x.refs[c.RefName]
	if !ok {
		re = &refEvents{
			tree:   interval.NewSearchTree[span, int](cmpInt),
			bySpan: make(map[span][]Event),
		}
		x.refs[c.RefName] = re
	}

	add := func(e Event) error {
		s := span{e.Start, e.End}
		if _, ok := re.bySpan[s]; !ok {
			if err := re.tree.Insert(e.Start, e.End, s); err != nil {
				return errors.Wrapf(err, "index %s of %s at %d", e.Kind, e.Query, e.Start)
			}
		}
		re.bySpan[s] = append(re.bySpan[s], e)
		x.n++
		return nil
	}

	for _, g := range c.Gaps {
		e := Event{Ref: c.RefName, Query: c.QueryName, Start: g.RefPos, End: g.RefPos, Size: g.Size}
		if g.Ref {
			e.Kind = Insertion
		} else {
			e.Kind = Deletion
			e.End = g.RefPos + g.Size - 1
		}
		if err := add(e); err != nil {
			return err
		}
	}
	for _, mismatches := range []map[int]profiler.Mismatch{c.Mismatches, c.LowKmerMismatchAt} {
		for _, m := range mismatches {
			e := Event{Ref: c.RefName, Query: c.QueryName, Kind: Mismatch, Start: m.RefPos, End: m.RefPos, Size: 1}
			if err := add(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// Len returns the number of indexed events.
func (x *EventIndex) Len() int {
	return x.n
}

// Overlapping returns the events of ref touching the inclusive range
// [start, end], ordered by position.
func (x *EventIndex) Overlapping(ref string, start, end int) []Event {
	re, ok := x.refs[ref]
	if !ok {
		return nil
	}
	spans, ok := re.tree.AllIntersections(start, end)
	if !ok {
		return nil
	}

	var events []Event
	seen := make(map[span]struct{}, len(spans))
	for _, s := range spans {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		events = append(events, re.bySpan[s]...)
	}
	sort.Slice(events, func(i, j int) bool {
		a, b := &events[i], &events[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Query != b.Query {
			return a.Query < b.Query
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.End < b.End
	})
	return events
}
