package profiler

import (
	"github.com/aria-lang/seqalign/internal/alignment"
)

func isHomopolymer(s string) bool {
	if s == "" {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// homopolymerWeight weighs a homopolymer gap by the length of the run it
// sits in. On the gapped side the run is counted around the gap; on the
// other side it is counted from the gap start (so the gap bases are
// included) and backwards. If either side has no such run the gap is a
// full event; otherwise it is size divided by the count-weighted mean run
// length.
func homopolymerWeight(pair *alignment.AlignedPair, g *Gap, refCount, seqCount float64) float64 {
	gapped, other := pair.A, pair.B
	gappedCount, otherCount := refCount, seqCount
	if !g.Ref {
		gapped, other = pair.B, pair.A
		gappedCount, otherCount = seqCount, refCount
	}
	base := g.GapedSequence[0]

	nGapped := runForward(gapped, g.StartPos+g.Size, base) + runBackward(gapped, g.StartPos-1, base)
	nOther := runForward(other, g.StartPos, base) + runBackward(other, g.StartPos-1, base)
	if nGapped == 0 || nOther == 0 {
		return 1
	}

	if gappedCount+otherCount <= 0 {
		gappedCount, otherCount = 1, 1
	}
	mean := (float64(nGapped)*gappedCount + float64(nOther)*otherCount) / (gappedCount + otherCount)
	return float64(g.Size) / mean
}

func runForward(s string, from int, base byte) int {
	n := 0
	for i := from; i < len(s) && s[i] == base; i++ {
		n++
	}
	return n
}

func runBackward(s string, from int, base byte) int {
	n := 0
	for i := from; i >= 0 && s[i] == base; i-- {
		n++
	}
	return n
}
