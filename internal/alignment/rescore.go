package alignment

import (
	"github.com/aria-lang/seqalign/internal/scoring"
	"github.com/aria-lang/seqalign/internal/sequence"
)

// Rescore computes the score of an already gapped pair. A gap run reaching
// the last column costs the right-end costs, one starting at column 0 the
// left-end costs and any other run the internal costs. For a global
// alignment this equals the kernel score.
func Rescore(a, b string, model *scoring.Model) int {
	g := model.Gaps()
	n := len(a)
	score := 0

	for i := 0; i < n; i++ {
		if a[i] == sequence.GapChar || b[i] == sequence.GapChar {
			gapped := a
			if b[i] == sequence.GapChar {
				gapped = b
			}
			start := i
			for i+1 < n && gapped[i+1] == sequence.GapChar {
				i++
			}
			size := i - start + 1

			switch {
			case start+size >= n:
				score -= scoring.Cost(g.RightOpen, g.RightExtend, size)
			case start == 0:
				score -= scoring.Cost(g.LeftOpen, g.LeftExtend, size)
			default:
				score -= scoring.Cost(g.Open, g.Extend, size)
			}
			continue
		}
		score += model.Score(a[i], b[i])
	}

	return score
}
