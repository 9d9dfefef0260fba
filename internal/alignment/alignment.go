// Package alignment implements the pairwise alignment kernel: affine-gap
// Needleman-Wunsch (global) and Smith-Waterman (local) over preallocated
// buffers, plus reconstruction of the gapped sequence pair.
package alignment

import (
	"fmt"

	"github.com/pkg/errors"
)

// Mode selects global or local alignment.
type Mode int

const (
	// Global aligns both sequences end to end
	Global Mode = iota
	// Local aligns the best-scoring sub-regions only
	Local
)

func (m Mode) String() string {
	switch m {
	case Global:
		return "global"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// ParseMode converts "global" or "local" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "global":
		return Global, nil
	case "local":
		return Local, nil
	}
	return Global, errors.Errorf("unknown alignment mode: %s", s)
}

// GapInfo is one gap run of an alignment. Pos is the alignment column the
// run starts at; InA is true when the gap characters are in sequence A.
type GapInfo struct {
	Pos  int  `json:"pos"`
	Size int  `json:"size"`
	InA  bool `json:"in_a"`
}

// Result is a computed alignment in compact form: the score, the aligned
// region of each sequence and the gap runs. It holds everything needed to
// rebuild the gapped pair without rerunning the dynamic programming.
type Result struct {
	Score  int       `json:"score"`
	AStart int       `json:"a_start"`
	AEnd   int       `json:"a_end"`
	BStart int       `json:"b_start"`
	BEnd   int       `json:"b_end"`
	Gaps   []GapInfo `json:"gaps"`
}

// Len returns the number of alignment columns.
func (r *Result) Len() int {
	n := r.AEnd - r.AStart
	for _, g := range r.Gaps {
		if g.InA {
			n += g.Size
		}
	}
	return n
}

// Clone returns a copy that shares no memory with r.
func (r *Result) Clone() Result {
	c := *r
	if r.Gaps != nil {
		c.Gaps = append([]GapInfo(nil), r.Gaps...)
	}
	return c
}

// Equal reports whether two results describe the same alignment.
func (r *Result) Equal(o *Result) bool {
	if r.Score != o.Score || r.AStart != o.AStart || r.AEnd != o.AEnd ||
		r.BStart != o.BStart || r.BEnd != o.BEnd || len(r.Gaps) != len(o.Gaps) {
		return false
	}
	for i, g := range r.Gaps {
		if g != o.Gaps[i] {
			return false
		}
	}
	return true
}

// Validate checks that r describes an alignment of a sequence of lenA
// bases against one of lenB bases: both regions in range, gap runs
// ordered and disjoint, and the same number of aligned bases on both
// sides.
func (r *Result) Validate(lenA, lenB int) error {
	if r.AStart < 0 || r.AStart > r.AEnd || r.AEnd > lenA {
		return errors.Errorf("region of A [%d, %d) out of range for length %d", r.AStart, r.AEnd, lenA)
	}
	if r.BStart < 0 || r.BStart > r.BEnd || r.BEnd > lenB {
		return errors.Errorf("region of B [%d, %d) out of range for length %d", r.BStart, r.BEnd, lenB)
	}

	var gapsA, gapsB, next int
	for i, g := range r.Gaps {
		if g.Size < 1 || g.Pos < next {
			return errors.Errorf("gap %d (pos %d, size %d) empty or overlapping", i, g.Pos, g.Size)
		}
		next = g.Pos + g.Size
		if g.InA {
			gapsA += g.Size
		} else {
			gapsB += g.Size
		}
	}
	diagA := r.AEnd - r.AStart - gapsB
	diagB := r.BEnd - r.BStart - gapsA
	if diagA < 0 || diagA != diagB {
		return errors.Errorf("gaps do not fit the regions: %d vs %d aligned bases", diagA, diagB)
	}
	if next > diagA+gapsA+gapsB {
		return errors.Errorf("gap at column %d past the alignment end %d", next, diagA+gapsA+gapsB)
	}
	return nil
}

// SizeError is returned when a sequence is longer than the kernel buffers.
// It is not retried: the kernel must be created (or resized) for the
// largest expected input.
type SizeError struct {
	Len     int
	MaxSize int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("sequence length %d exceeds aligner max size %d", e.Len, e.MaxSize)
}
