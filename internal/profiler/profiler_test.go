package profiler

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/internal/kmer"
	"github.com/aria-lang/seqalign/internal/quality"
	"github.com/aria-lang/seqalign/internal/scoring"
	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gappedPair builds an aligned pair from two gapped strings; the reads are
// the ungapped strings with the given qualities (nil for defaults).
func gappedPair(a, b string, qualA, qualB []int) (*alignment.AlignedPair, *sequence.Read, *sequence.Read) {
	ref := sequence.MustNew("ref", strings.ReplaceAll(a, "-", ""), qualA)
	query := sequence.MustNew("query", strings.ReplaceAll(b, "-", ""), qualB)
	pair := &alignment.AlignedPair{
		A:     a,
		B:     b,
		QualA: make([]int, len(a)),
		QualB: make([]int, len(b)),
	}
	for i := range pair.QualA {
		pair.QualA[i] = 40
		pair.QualB[i] = 40
	}
	return pair, ref, query
}

func noQuality() Options {
	return Options{Qual: quality.DefaultThresholds()}
}

func TestEndGapPolicy(t *testing.T) {
	pair, ref, query := gappedPair("AAAAGATTACA", "----GATTACA", nil, nil)
	model := scoring.Default()
	comp := NewComparison()

	t.Run("end gaps not counted", func(t *testing.T) {
		Profile(comp, pair, ref, query, model, noQuality())

		assert.Equal(t, 7, comp.HighQualityMatches)
		assert.Empty(t, comp.Gaps)
		assert.Equal(t, 0.0, comp.IndelEvents())
		assert.Equal(t, 0.0, comp.PercentGaps)
		assert.Equal(t, 7, comp.BasesInAln)
		assert.Equal(t, 1.0, comp.PercentMatch)
		assert.Equal(t, 1.0, comp.EventBasedIdentity)

		assert.Equal(t, 7, comp.Ref.Covered)
		assert.InDelta(t, 7.0/11.0, comp.Ref.Coverage, 1e-9)
		assert.InDelta(t, 7.0/11.0, comp.Ref.Identity, 1e-9)
		assert.Equal(t, 1.0, comp.Query.Coverage)
		assert.Equal(t, 1.0, comp.Query.Identity)
	})

	t.Run("end gaps counted", func(t *testing.T) {
		opts := noQuality()
		opts.CountEndGaps = true
		Profile(comp, pair, ref, query, model, opts)

		require.Len(t, comp.Gaps, 1)
		g := comp.Gaps[0]
		assert.True(t, g.EndGap)
		assert.False(t, g.Ref)
		assert.Equal(t, 4, g.Size)
		assert.Equal(t, "AAAA", g.GapedSequence)
		assert.Equal(t, 1.0, comp.LargeBaseIndel)
		assert.InDelta(t, 4.0/7.0, comp.PercentGaps, 1e-9)
		assert.InDelta(t, 7.0/8.0, comp.EventBasedIdentity, 1e-9)
	})
}

func TestEndGapPolicyFromKernel(t *testing.T) {
	model, err := scoring.Simple(1, -1, scoring.NewEndGapScores(5, 1, 0, 0))
	require.NoError(t, err)

	ref := sequence.MustNew("ref", "AAAAGATTACA", nil)
	query := sequence.MustNew("query", "GATTACA", nil)
	r, err := alignment.NewKernel(20).Align(ref.Seq, query.Seq, model, alignment.Global)
	require.NoError(t, err)
	pair := r.Pair(ref, query)

	comp := NewComparison()
	Profile(comp, &pair, ref, query, model, noQuality())
	withoutEnds := comp.PercentGaps
	assert.Empty(t, comp.Gaps)

	opts := noQuality()
	opts.CountEndGaps = true
	Profile(comp, &pair, ref, query, model, opts)
	assert.Len(t, comp.Gaps, 1)
	assert.Greater(t, comp.PercentGaps, withoutEnds)
}

func TestHomopolymerWeighting(t *testing.T) {
	model := scoring.Default()
	opts := noQuality()
	opts.WeighHomopolymers = true
	comp := NewComparison()

	t.Run("insertion into a run", func(t *testing.T) {
		pair, ref, query := gappedPair("GC-AAATG", "GCAAAATG", nil, nil)
		Profile(comp, pair, ref, query, model, opts)

		require.Len(t, comp.Gaps, 1)
		g := comp.Gaps[2]
		assert.True(t, g.Ref)
		assert.Equal(t, "A", g.GapedSequence)
		assert.InDelta(t, 1/3.5, g.Weight, 1e-9)
		assert.InDelta(t, 1/3.5, comp.OneBaseIndel, 1e-9)
		assert.Greater(t, comp.OneBaseIndel, 0.0)
		assert.Less(t, comp.OneBaseIndel, 1.0)
	})

	t.Run("insertion without run", func(t *testing.T) {
		pair, ref, query := gappedPair("GCT-CTG", "GCTACTG", nil, nil)
		Profile(comp, pair, ref, query, model, opts)

		require.Len(t, comp.Gaps, 1)
		assert.Equal(t, 1.0, comp.OneBaseIndel)
	})

	t.Run("weighting disabled", func(t *testing.T) {
		pair, ref, query := gappedPair("GC-AAATG", "GCAAAATG", nil, nil)
		Profile(comp, pair, ref, query, model, noQuality())
		assert.Equal(t, 1.0, comp.OneBaseIndel)
	})

	t.Run("read counts weigh the mean", func(t *testing.T) {
		pair, ref, query := gappedPair("GC-AAATG", "GCAAAATG", nil, nil)
		query.WithCount(3)
		Profile(comp, pair, ref, query, model, opts)
		// (3*1 + 4*3) / 4
		assert.InDelta(t, 1/3.75, comp.OneBaseIndel, 1e-9)
	})
}

func TestGapAndMismatchPositions(t *testing.T) {
	pair, ref, query := gappedPair("ACGTTTTACG", "ACG---TTCG", nil, nil)
	comp := NewComparison()
	Profile(comp, pair, ref, query, scoring.Default(), noQuality())

	require.Len(t, comp.Gaps, 1)
	g := comp.Gaps[3]
	assert.Equal(t, 3, g.RefPos)
	assert.Equal(t, 3, g.SeqPos)
	assert.Equal(t, "TTT", g.GapedSequence)
	assert.Equal(t, []int{40, 40, 40}, g.Qualities)
	assert.Equal(t, 1.0, comp.LargeBaseIndel)

	require.Len(t, comp.Mismatches, 1)
	m := comp.Mismatches[7]
	assert.Equal(t, byte('A'), m.RefBase)
	assert.Equal(t, byte('T'), m.SeqBase)
	assert.Equal(t, 7, m.RefPos)
	assert.Equal(t, 4, m.SeqPos)
	assert.False(t, m.Transition)
	assert.Equal(t, 1, comp.HQMismatches)
	assert.Equal(t, 6, comp.HighQualityMatches)

	assert.Equal(t, 10, comp.Ref.Covered)
	assert.Equal(t, 7, comp.Query.Covered)
	assert.Equal(t, 1.0, comp.Query.Coverage)
	assert.InDelta(t, 6.0/8.0, comp.EventBasedIdentity, 1e-9)
}

func TestMismatchClassification(t *testing.T) {
	const ref = "ACGTACGTAC"
	const query = "ACGTATGTAC" // C>T at 5

	lowAt5 := make([]int, len(query))
	for i := range lowAt5 {
		lowAt5[i] = 40
	}
	lowAt5[5] = 10

	index, err := kmer.NewIndex(3, 1)
	require.NoError(t, err)
	index.Add(ref, 1)

	tests := []struct {
		name      string
		qualB     []int
		usingQual bool
		checkKmer bool
		hq        int
		lq        int
		lowKmer   int
	}{
		{"high quality", nil, true, false, 1, 0, 0},
		{"low quality", lowAt5, true, false, 0, 1, 0},
		{"low quality ignored", lowAt5, false, false, 1, 0, 0},
		{"low k-mer", nil, true, true, 0, 0, 1},
		{"low quality wins over low k-mer", lowAt5, true, true, 0, 1, 0},
		{"low k-mer without quality", lowAt5, false, true, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, r, q := gappedPair(ref, query, nil, tt.qualB)
			opts := Options{
				UsingQuality: tt.usingQual,
				CheckKmer:    tt.checkKmer,
				Qual:         quality.DefaultThresholds(),
				Kmers:        index,
			}
			comp := NewComparison()
			Profile(comp, pair, r, q, scoring.Default(), opts)

			assert.Equal(t, tt.hq, comp.HQMismatches)
			assert.Equal(t, tt.lq, comp.LQMismatches)
			assert.Equal(t, tt.lowKmer, comp.LowKmerMismatches)
			assert.Equal(t, 9, comp.Matches())

			var m Mismatch
			if tt.lowKmer > 0 {
				m = comp.LowKmerMismatchAt[5]
				assert.Empty(t, comp.Mismatches)
			} else {
				m = comp.Mismatches[5]
				assert.Empty(t, comp.LowKmerMismatchAt)
			}
			assert.True(t, m.Transition)
			assert.Equal(t, "ACG", m.RefKmer)
			assert.Equal(t, "ATG", m.SeqKmer)
			assert.Equal(t, 0.0, m.KmerCount)
		})
	}
}

func TestMatchQuality(t *testing.T) {
	qual := []int{40, 40, 10, 40, 40, 40, 40, 40, 40, 40}
	pair, ref, query := gappedPair("ACGTACGTAC", "ACGTACGTAC", nil, qual)
	opts := Options{
		UsingQuality:      true,
		DoingMatchQuality: true,
		Qual:              quality.Thresholds{Primary: 20, Secondary: 15, Window: 0},
	}

	comp := NewComparison()
	Profile(comp, pair, ref, query, scoring.Default(), opts)
	assert.Equal(t, 1, comp.LowQualityMatches)
	assert.Equal(t, 9, comp.HighQualityMatches)
	assert.Equal(t, 1.0, comp.Ref.Identity)

	opts.DoingMatchQuality = false
	Profile(comp, pair, ref, query, scoring.Default(), opts)
	assert.Equal(t, 0, comp.LowQualityMatches)
	assert.Equal(t, 10, comp.HighQualityMatches)
}

func TestProfilePrimer(t *testing.T) {
	qual := []int{40, 40, 40, 40, 40, 10, 40, 40, 40, 40}
	pair, ref, query := gappedPair("ACGTACGTAC", "ACGTATGTAC", nil, qual)
	opts := DefaultOptions()

	comp := NewComparison()
	Profile(comp, pair, ref, query, scoring.Default(), opts)
	assert.Equal(t, 1, comp.LQMismatches)

	ProfilePrimer(comp, pair, ref, query, scoring.Default(), opts)
	assert.Equal(t, 0, comp.LQMismatches)
	assert.Equal(t, 1, comp.HQMismatches)
	assert.Equal(t, 9, comp.HighQualityMatches)
	assert.Empty(t, comp.Mismatches[5].SeqKmer)
}

func TestResetDoesNotAlias(t *testing.T) {
	pair, ref, query := gappedPair("ACGTTTTACG", "ACG---TTCG", nil, nil)
	comp := NewComparison()
	Profile(comp, pair, ref, query, scoring.Default(), noQuality())
	saved := *comp

	other, r2, q2 := gappedPair("ACGT", "ACGT", nil, nil)
	Profile(comp, other, r2, q2, scoring.Default(), noQuality())

	assert.Len(t, saved.Gaps, 1)
	assert.Len(t, saved.Mismatches, 1)
	assert.Empty(t, comp.Gaps)
	assert.Equal(t, 4, comp.HighQualityMatches)
}

func TestBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	k := alignment.NewKernel(150)
	model := scoring.Default()
	comp := NewComparison()

	for n := 0; n < 50; n++ {
		ref := sequence.MustNew("ref", randomDNA(rng, rng.Intn(100)), nil)
		query := sequence.MustNew("query", randomDNA(rng, rng.Intn(100)), nil)

		for _, mode := range []alignment.Mode{alignment.Global, alignment.Local} {
			r, err := k.Align(ref.Seq, query.Seq, model, mode)
			require.NoError(t, err)
			pair := r.Pair(ref, query)

			for _, countEnds := range []bool{false, true} {
				opts := DefaultOptions()
				opts.CountEndGaps = countEnds
				Profile(comp, &pair, ref, query, model, opts)

				for _, s := range []Side{comp.Ref, comp.Query} {
					assert.GreaterOrEqual(t, s.Coverage, 0.0)
					assert.LessOrEqual(t, s.Coverage, 1.0)
					assert.GreaterOrEqual(t, s.Identity, 0.0)
					assert.LessOrEqual(t, s.Identity, 1.0)
				}
				assert.GreaterOrEqual(t, comp.EventBasedIdentity, 0.0)
				assert.LessOrEqual(t, comp.EventBasedIdentity, 1.0)
			}
		}
	}
}

func randomDNA(rng *rand.Rand, n int) string {
	const bases = "ACGT"
	b := make([]byte, n)
	for i := range b {
		b[i] = bases[rng.Intn(4)]
	}
	return string(b)
}

func TestFindTandemRepeats(t *testing.T) {
	assert.Equal(t, []TandemRepeat{{Unit: "ATG", Count: 3, Start: 2, End: 10}},
		FindTandemRepeats("CCATGATGATGCC"))
	assert.Equal(t, []TandemRepeat{{Unit: "AT", Count: 3, Start: 0, End: 5}},
		FindTandemRepeats("ATATAT"))
	assert.Empty(t, FindTandemRepeats("AAAAAA"))
	assert.Empty(t, FindTandemRepeats("ACGTTGCA"))

	assert.Equal(t, []TandemRepeat{{Unit: "TGA", Count: 2, Start: 3, End: 8}},
		TandemRepeatsOf("CCATGATGATGCC", "TGA"))
	assert.Nil(t, TandemRepeatsOf("ATATAT", "ATAT"))
}

func TestTandemRepeatGaps(t *testing.T) {
	model := scoring.Default()
	comp := NewComparison()

	t.Run("deletion of one copy", func(t *testing.T) {
		pair, ref, query := gappedPair("CCATGATGATGCC", "CCATG---ATGCC", nil, nil)
		Profile(comp, pair, ref, query, model, noQuality())

		require.Len(t, comp.Gaps, 1)
		g := comp.Gaps[5]
		assert.Equal(t, "ATG", g.GapedSequence)
		assert.True(t, g.InTandemRepeat)
		assert.Equal(t, 1, comp.TandemRepeatGaps)
		assert.Equal(t, 1.0, comp.LargeBaseIndel)
	})

	t.Run("insertion of one copy", func(t *testing.T) {
		pair, ref, query := gappedPair("CCATG---ATGCC", "CCATGATGATGCC", nil, nil)
		Profile(comp, pair, ref, query, model, noQuality())

		require.Len(t, comp.Gaps, 1)
		assert.True(t, comp.Gaps[5].Ref)
		assert.True(t, comp.Gaps[5].InTandemRepeat)
		assert.Equal(t, 1, comp.TandemRepeatGaps)
	})

	t.Run("kernel placement", func(t *testing.T) {
		ref := sequence.MustNew("ref", "CCATGATGATGCC", nil)
		query := sequence.MustNew("query", "CCATGATGCC", nil)
		r, err := alignment.NewKernel(20).Align(ref.Seq, query.Seq, model, alignment.Global)
		require.NoError(t, err)
		pair := r.Pair(ref, query)

		Profile(comp, &pair, ref, query, model, noQuality())
		require.Len(t, comp.Gaps, 1)
		for _, g := range comp.Gaps {
			assert.Equal(t, 3, g.Size)
			assert.True(t, g.InTandemRepeat)
		}
		assert.Equal(t, 1, comp.TandemRepeatGaps)
	})

	t.Run("gap outside a repeat", func(t *testing.T) {
		pair, ref, query := gappedPair("ACGTTTTACG", "ACG---TTCG", nil, nil)
		Profile(comp, pair, ref, query, model, noQuality())
		assert.False(t, comp.Gaps[3].InTandemRepeat)
		assert.Equal(t, 0, comp.TandemRepeatGaps)

		pair, ref, query = gappedPair("CCAGTCTTGCC", "CCA---TTGCC", nil, nil)
		Profile(comp, pair, ref, query, model, noQuality())
		assert.False(t, comp.Gaps[3].InTandemRepeat)
	})

	t.Run("short gaps are not checked", func(t *testing.T) {
		pair, ref, query := gappedPair("CCATATATGG", "CCAT--ATGG", nil, nil)
		Profile(comp, pair, ref, query, model, noQuality())
		require.Len(t, comp.Gaps, 1)
		assert.False(t, comp.Gaps[4].InTandemRepeat)
		assert.Equal(t, 0, comp.TandemRepeatGaps)
	})
}

func TestProfileRange(t *testing.T) {
	model := scoring.Default()
	const a = "ACGTACGTAC-GTACGTA"
	const b = "ACCTACG--CAGTACCTA"
	pair, ref, query := gappedPair(a, b, nil, nil)

	full := NewComparison()
	Profile(full, pair, ref, query, model, noQuality())
	whole := NewComparison()
	ProfileRange(whole, pair, ref, query, model, noQuality(), 0, len(a)+5)
	assert.Equal(t, full, whole)

	first := NewComparison()
	ProfileRange(first, pair, ref, query, model, noQuality(), 0, 9)
	assert.Equal(t, 6, first.HighQualityMatches)
	assert.Equal(t, 1, first.HQMismatches)
	require.Len(t, first.Gaps, 1)
	assert.Equal(t, 2, first.Gaps[7].Size)
	assert.Equal(t, 9, first.BasesInAln)

	second := NewComparison()
	ProfileRange(second, pair, ref, query, model, noQuality(), 9, 0)
	assert.Equal(t, 7, second.HighQualityMatches)
	assert.Equal(t, 1, second.HQMismatches)
	require.Len(t, second.Gaps, 1)
	g := second.Gaps[10]
	assert.Equal(t, 1, g.Size)
	assert.Equal(t, full.Gaps[10], g)
	assert.Equal(t, full.Mismatches[15], second.Mismatches[15])
	assert.Equal(t, 9, second.BasesInAln)

	assert.Equal(t, full.BasesInAln, first.BasesInAln+second.BasesInAln)
	assert.Equal(t, full.HighQualityMatches, first.HighQualityMatches+second.HighQualityMatches)
	assert.Equal(t, full.IndelEvents(), first.IndelEvents()+second.IndelEvents())

	t.Run("start inside a gap run", func(t *testing.T) {
		comp := NewComparison()
		ProfileRange(comp, pair, ref, query, model, noQuality(), 8, 0)
		require.Contains(t, comp.Gaps, 8)
		g := comp.Gaps[8]
		assert.Equal(t, 1, g.Size)
		assert.Equal(t, 8, g.RefPos)
		assert.Equal(t, 7, g.SeqPos)
		assert.Equal(t, "A", g.GapedSequence)
	})

	t.Run("end gaps stay end gaps", func(t *testing.T) {
		pair, ref, query := gappedPair("AAAAGATTACA", "----GATTACA", nil, nil)
		comp := NewComparison()
		ProfileRange(comp, pair, ref, query, model, noQuality(), 2, 0)
		assert.Empty(t, comp.Gaps)
		assert.Equal(t, 7, comp.HighQualityMatches)
		assert.Equal(t, 7, comp.BasesInAln)
		assert.Equal(t, 7, comp.Ref.Covered)
	})

	t.Run("primer range", func(t *testing.T) {
		comp := NewComparison()
		ProfilePrimerRange(comp, pair, ref, query, model, noQuality(), 9, 0)
		assert.Equal(t, 7, comp.HighQualityMatches)
		assert.Equal(t, 1, comp.HQMismatches)
	})
}
