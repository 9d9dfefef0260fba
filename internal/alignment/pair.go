package alignment

import (
	"fmt"
	"strings"

	"github.com/aria-lang/seqalign/internal/sequence"
)

// AlignedPair is a gapped sequence pair with parallel qualities. A gap
// column carries the quality of the base it is aligned against, so QualA
// and QualB are defined at every column. AStart and BStart locate the
// aligned region in the original sequences.
type AlignedPair struct {
	A      string `json:"a"`
	B      string `json:"b"`
	QualA  []int  `json:"qual_a"`
	QualB  []int  `json:"qual_b"`
	AStart int    `json:"a_start"`
	BStart int    `json:"b_start"`
}

// Pair rebuilds the gapped pair described by r from the original reads.
func (r *Result) Pair(a, b *sequence.Read) AlignedPair {
	n := r.Len()
	seqA := make([]byte, 0, n)
	seqB := make([]byte, 0, n)
	qualA := make([]int, 0, n)
	qualB := make([]int, 0, n)

	ia, ib := r.AStart, r.BStart
	gi := 0
	for col := 0; col < n; {
		if gi < len(r.Gaps) && r.Gaps[gi].Pos == col {
			g := r.Gaps[gi]
			for s := 0; s < g.Size; s++ {
				if g.InA {
					seqA = append(seqA, sequence.GapChar)
					seqB = append(seqB, b.Seq[ib])
					qualA = append(qualA, b.Qual[ib])
					qualB = append(qualB, b.Qual[ib])
					ib++
				} else {
					seqA = append(seqA, a.Seq[ia])
					seqB = append(seqB, sequence.GapChar)
					qualA = append(qualA, a.Qual[ia])
					qualB = append(qualB, a.Qual[ia])
					ia++
				}
			}
			col += g.Size
			gi++
			continue
		}
		seqA = append(seqA, a.Seq[ia])
		seqB = append(seqB, b.Seq[ib])
		qualA = append(qualA, a.Qual[ia])
		qualB = append(qualB, b.Qual[ib])
		ia++
		ib++
		col++
	}

	return AlignedPair{
		A:      string(seqA),
		B:      string(seqB),
		QualA:  qualA,
		QualB:  qualB,
		AStart: r.AStart,
		BStart: r.BStart,
	}
}

// Len returns the number of alignment columns.
func (p *AlignedPair) Len() int {
	return len(p.A)
}

// MatchCount returns the number of columns with identical bases.
func (p *AlignedPair) MatchCount() int {
	count := 0
	for i := 0; i < len(p.A); i++ {
		if p.A[i] == p.B[i] && p.A[i] != sequence.GapChar {
			count++
		}
	}
	return count
}

// GapOpenings counts the gap runs in both sequences.
func (p *AlignedPair) GapOpenings() int {
	openings := 0
	inGapA, inGapB := false, false

	for i := 0; i < len(p.A); i++ {
		if p.A[i] == sequence.GapChar && !inGapA {
			openings++
			inGapA = true
		} else if p.A[i] != sequence.GapChar {
			inGapA = false
		}

		if p.B[i] == sequence.GapChar && !inGapB {
			openings++
			inGapB = true
		} else if p.B[i] != sequence.GapChar {
			inGapB = false
		}
	}

	return openings
}

// Identity returns the fraction of columns with identical bases.
func (p *AlignedPair) Identity() float64 {
	if len(p.A) == 0 {
		return 0
	}
	return float64(p.MatchCount()) / float64(len(p.A))
}

// CIGAR renders the alignment with A as the reference: '=' and 'X' for
// paired columns, 'I' for bases only in B and 'D' for bases only in A.
func (p *AlignedPair) CIGAR() string {
	if len(p.A) == 0 {
		return ""
	}

	var cigar strings.Builder
	currentOp := byte(0)
	count := 0

	for i := 0; i < len(p.A); i++ {
		var op byte
		if p.A[i] == sequence.GapChar {
			op = 'I'
		} else if p.B[i] == sequence.GapChar {
			op = 'D'
		} else if p.A[i] == p.B[i] {
			op = '='
		} else {
			op = 'X'
		}

		if op == currentOp {
			count++
		} else {
			if count > 0 {
				fmt.Fprintf(&cigar, "%d%c", count, currentOp)
			}
			currentOp = op
			count = 1
		}
	}

	if count > 0 {
		fmt.Fprintf(&cigar, "%d%c", count, currentOp)
	}

	return cigar.String()
}

// Format returns a three-line text view of the alignment.
func (p *AlignedPair) Format() string {
	var matchLine strings.Builder
	for i := 0; i < len(p.A); i++ {
		if p.A[i] == p.B[i] && p.A[i] != sequence.GapChar {
			matchLine.WriteByte('|')
		} else if p.A[i] == sequence.GapChar || p.B[i] == sequence.GapChar {
			matchLine.WriteByte(' ')
		} else {
			matchLine.WriteByte('.')
		}
	}

	return fmt.Sprintf("A: %s\n   %s\nB: %s", p.A, matchLine.String(), p.B)
}

// RealPosA returns the position in A's original sequence of column col.
func (p *AlignedPair) RealPosA(col int) int {
	return p.AStart + sequence.RealPos(p.A, col)
}

// RealPosB returns the position in B's original sequence of column col.
func (p *AlignedPair) RealPosB(col int) int {
	return p.BStart + sequence.RealPos(p.B, col)
}
