package profiler

import (
	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/internal/scoring"
	"github.com/aria-lang/seqalign/internal/sequence"
)

// walker tracks the real positions of both sequences while stepping
// through the columns of an aligned pair.
type walker struct {
	pair       *alignment.AlignedPair
	ref, query *sequence.Read
	model      *scoring.Model
	opts       *Options
	comp       *Comparison

	start, stop, end int // profiled columns; end is past the last gap run

	refPos, seqPos int // real positions of the current column

	gapBasesRef, gapBasesSeq int // all gap bases per side
	countedGapBases          int
	countedGaps              int
	tandemGaps               int
}

// Profile resets comp and fills it with the profile of pair, the alignment
// of ref (side A) against query (side B).
func Profile(comp *Comparison, pair *alignment.AlignedPair, ref, query *sequence.Read,
	model *scoring.Model, opts Options) {
	ProfileRange(comp, pair, ref, query, model, opts, 0, 0)
}

// ProfileRange is Profile restricted to the alignment columns [start,
// stop). A stop of 0 or past the end means the end of the alignment.
// Event positions stay relative to the whole reads. A gap run starting in
// the range is taken whole; one running into start is cut there.
func ProfileRange(comp *Comparison, pair *alignment.AlignedPair, ref, query *sequence.Read,
	model *scoring.Model, opts Options, start, stop int) {
	w := newWalker(comp, pair, ref, query, model, &opts, start, stop)
	w.walk(w.classify)
	w.finish()
}

// ProfilePrimer is Profile without quality or k-mer gating: every mismatch
// is high quality and every match is a high quality match. End gap and
// homopolymer rules still apply.
func ProfilePrimer(comp *Comparison, pair *alignment.AlignedPair, ref, query *sequence.Read,
	model *scoring.Model, opts Options) {
	ProfilePrimerRange(comp, pair, ref, query, model, opts, 0, 0)
}

// ProfilePrimerRange is ProfilePrimer restricted to the alignment columns
// [start, stop), like ProfileRange.
func ProfilePrimerRange(comp *Comparison, pair *alignment.AlignedPair, ref, query *sequence.Read,
	model *scoring.Model, opts Options, start, stop int) {
	w := newWalker(comp, pair, ref, query, model, &opts, start, stop)
	w.walk(w.classifyPrimer)
	w.finish()
}

func newWalker(comp *Comparison, pair *alignment.AlignedPair, ref, query *sequence.Read,
	model *scoring.Model, opts *Options, start, stop int) *walker {
	comp.Reset()
	comp.RefName = ref.Name
	comp.QueryName = query.Name

	n := pair.Len()
	if stop <= 0 || stop > n {
		stop = n
	}
	if start < 0 {
		start = 0
	}
	if start > stop {
		start = stop
	}

	w := &walker{
		pair:   pair,
		ref:    ref,
		query:  query,
		model:  model,
		opts:   opts,
		comp:   comp,
		start:  start,
		stop:   stop,
		refPos: pair.AStart,
		seqPos: pair.BStart,
	}
	w.seek()
	return w
}

// seek moves the real positions to the first profiled column.
func (w *walker) seek() {
	a, b := w.pair.A, w.pair.B
	for i := 0; i < w.start; i++ {
		if a[i] != sequence.GapChar {
			w.refPos++
		}
		if b[i] != sequence.GapChar {
			w.seqPos++
		}
	}
}

func (w *walker) walk(column func(i int)) {
	a, b := w.pair.A, w.pair.B

	i := w.start
	for i < w.stop {
		if a[i] == sequence.GapChar || b[i] == sequence.GapChar {
			i = w.gap(i)
			continue
		}
		column(i)
		w.refPos++
		w.seqPos++
		i++
	}
	w.end = i
}

// gap coalesces the gap run starting at column start and returns the
// first column after it.
func (w *walker) gap(start int) int {
	a, b := w.pair.A, w.pair.B
	n := len(a)
	inRef := a[start] == sequence.GapChar

	gapped, other, quals := a, b, w.pair.QualB
	if !inRef {
		gapped, other, quals = b, a, w.pair.QualA
	}
	end := start + 1
	for end < n && gapped[end] == sequence.GapChar {
		end++
	}
	size := end - start
	first := start
	for first > 0 && gapped[first-1] == sequence.GapChar {
		first--
	}

	g := Gap{
		StartPos:      start,
		RefPos:        w.refPos,
		SeqPos:        w.seqPos,
		Size:          size,
		GapedSequence: other[start:end],
		Qualities:     append([]int(nil), quals[start:end]...),
		Ref:           inRef,
		EndGap:        first == 0 || end >= n,
	}

	if inRef {
		w.gapBasesRef += size
		w.seqPos += size
	} else {
		w.gapBasesSeq += size
		w.refPos += size
	}

	if g.EndGap && !w.opts.CountEndGaps {
		return end
	}

	w.countedGaps++
	w.countedGapBases += size
	g.Weight = w.weigh(&g)
	if w.inTandemRepeat(&g) {
		g.InTandemRepeat = true
		w.tandemGaps++
	}
	w.comp.Gaps[start] = g
	return end
}

// weigh adds the gap to its indel size class and returns the amount added.
func (w *walker) weigh(g *Gap) float64 {
	weight := 1.0
	if w.opts.WeighHomopolymers && isHomopolymer(g.GapedSequence) {
		weight = homopolymerWeight(w.pair, g, w.ref.Count, w.query.Count)
	}
	if weight > 1 {
		weight = 1
	}

	switch {
	case g.Size >= 3:
		w.comp.LargeBaseIndel += weight
	case g.Size == 2:
		w.comp.TwoBaseIndel += weight
	default:
		w.comp.OneBaseIndel += weight
	}
	return weight
}

func (w *walker) mismatch(i int, withKmers bool) Mismatch {
	a, b := w.pair.A[i], w.pair.B[i]
	win := w.opts.Qual.Window
	m := Mismatch{
		AlnPos:       i,
		RefBase:      a,
		RefQual:      w.pair.QualA[i],
		RefLeadQual:  w.ref.LeadQual(w.refPos, win),
		RefTrailQual: w.ref.TrailQual(w.refPos, win),
		RefPos:       w.refPos,
		SeqBase:      b,
		SeqQual:      w.pair.QualB[i],
		SeqLeadQual:  w.query.LeadQual(w.seqPos, win),
		SeqTrailQual: w.query.TrailQual(w.seqPos, win),
		SeqPos:       w.seqPos,
		Transition:   scoring.IsTransition(a, b),
	}
	if withKmers && w.opts.Kmers != nil {
		k := w.opts.Kmers.K
		m.RefKmer = w.ref.KmerAt(w.refPos, k)
		m.SeqKmer = w.query.KmerAt(w.seqPos, k)
		m.KmerCount, _ = w.opts.Kmers.Count(m.SeqKmer)
		m.KmerFreq = w.opts.Kmers.Frequency(m.SeqKmer)
	}
	return m
}

func (w *walker) qualityPasses() bool {
	return w.ref.CheckQual(w.refPos, w.opts.Qual) && w.query.CheckQual(w.seqPos, w.opts.Qual)
}

func (w *walker) lowKmer(m *Mismatch) bool {
	if !w.opts.CheckKmer || w.opts.Kmers == nil {
		return false
	}
	return w.opts.Kmers.IsLowFrequency(m.RefKmer) || w.opts.Kmers.IsLowFrequency(m.SeqKmer)
}

func (w *walker) classify(i int) {
	c := w.comp
	if w.model.Score(w.pair.A[i], w.pair.B[i]) >= 0 {
		if w.opts.UsingQuality && w.opts.DoingMatchQuality && !w.qualityPasses() {
			c.LowQualityMatches++
		} else {
			c.HighQualityMatches++
		}
		return
	}

	m := w.mismatch(i, true)
	switch {
	case w.opts.UsingQuality && !w.qualityPasses():
		c.LQMismatches++
		c.Mismatches[i] = m
	case w.lowKmer(&m):
		c.LowKmerMismatches++
		c.LowKmerMismatchAt[i] = m
	default:
		c.HQMismatches++
		c.Mismatches[i] = m
	}
}

func (w *walker) classifyPrimer(i int) {
	c := w.comp
	if w.model.Score(w.pair.A[i], w.pair.B[i]) >= 0 {
		c.HighQualityMatches++
		return
	}
	c.HQMismatches++
	c.Mismatches[i] = w.mismatch(i, false)
}

// finish derives identity, coverage and the alignment-level percentages.
func (w *walker) finish() {
	c := w.comp
	n := w.end - w.start
	endRef := endGapColumns(w.pair.A, w.start, w.end)
	endSeq := endGapColumns(w.pair.B, w.start, w.end)
	matches := c.Matches()
	c.TandemRepeatGaps = w.tandemGaps

	c.Ref = side(n-w.gapBasesRef-endSeq, matches, w.ref.Len())
	c.Query = side(n-w.gapBasesSeq-endRef, matches, w.query.Len())

	c.BasesInAln = n - endRef - endSeq
	if c.BasesInAln > 0 {
		total := float64(c.BasesInAln)
		c.PercentMatch = float64(matches) / total
		c.PercentMismatch = float64(c.HQMismatches+c.LQMismatches) / total
		c.PercentGaps = float64(w.countedGapBases) / total
	}

	c.OverlappingEvents = matches + c.HQMismatches + c.LQMismatches + c.LowKmerMismatches + w.countedGaps
	if c.OverlappingEvents > 0 {
		c.EventBasedIdentity = float64(matches) / float64(c.OverlappingEvents)
	}
}

func side(covered, identities, length int) Side {
	if covered < 0 {
		covered = 0
	}
	s := Side{Covered: covered, Identities: identities}
	if length > 0 {
		s.Coverage = float64(covered) / float64(length)
		s.Identity = float64(identities) / float64(length)
	}
	return s
}

// endGapColumns counts the columns of [from, to) inside the gap runs at
// either end of an aligned sequence.
func endGapColumns(aligned string, from, to int) int {
	n := len(aligned)
	lead := 0
	for lead < n && aligned[lead] == sequence.GapChar {
		lead++
	}
	if lead == n {
		return to - from
	}
	trail := n
	for trail > 0 && aligned[trail-1] == sequence.GapChar {
		trail--
	}
	return overlap(from, to, 0, lead) + overlap(from, to, trail, n)
}

func overlap(from, to, lo, hi int) int {
	if n := min(to, hi) - max(from, lo); n > 0 {
		return n
	}
	return 0
}
