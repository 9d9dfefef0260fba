// Package profiler classifies every column of a computed alignment.
//
// Gap runs become Gap events, mismatching columns become Mismatch events
// gated by base quality and k-mer frequency, and the counts are summarized
// into a Comparison with identity and coverage figures for both sides.
package profiler

import (
	"fmt"

	"github.com/aria-lang/seqalign/internal/kmer"
	"github.com/aria-lang/seqalign/internal/quality"
)

// Gap is one coalesced gap run.
type Gap struct {
	StartPos      int    `json:"start_pos"` // alignment column
	RefPos        int    `json:"ref_pos"`
	SeqPos        int    `json:"seq_pos"`
	Size          int    `json:"size"`
	GapedSequence string `json:"gaped_sequence"`
	Qualities     []int  `json:"qualities"`
	// Ref is true when the gap characters are in the reference, i.e. the
	// query carries extra bases.
	Ref    bool    `json:"ref"`
	EndGap bool    `json:"end_gap"`
	Weight float64 `json:"weight"`
	// InTandemRepeat marks a gap of three or more bases that adds or
	// removes whole copies inside a tandem repeat.
	InTandemRepeat bool `json:"in_tandem_repeat"`
}

// Mismatch is one column pairing two bases that score below zero.
type Mismatch struct {
	AlnPos int `json:"aln_pos"`

	RefBase      byte   `json:"ref_base"`
	RefQual      int    `json:"ref_qual"`
	RefLeadQual  []int  `json:"ref_lead_qual"`
	RefTrailQual []int  `json:"ref_trail_qual"`
	RefPos       int    `json:"ref_pos"`
	RefKmer      string `json:"ref_kmer,omitempty"`

	SeqBase      byte   `json:"seq_base"`
	SeqQual      int    `json:"seq_qual"`
	SeqLeadQual  []int  `json:"seq_lead_qual"`
	SeqTrailQual []int  `json:"seq_trail_qual"`
	SeqPos       int    `json:"seq_pos"`
	SeqKmer      string `json:"seq_kmer,omitempty"`

	// weighted count of SeqKmer in the k-mer index, and its share of all
	// indexed k-mers
	KmerCount float64 `json:"kmer_count"`
	KmerFreq  float64 `json:"kmer_freq"`

	Transition bool `json:"transition"`
}

// Side holds the per-sequence figures of a Comparison.
type Side struct {
	Covered    int     `json:"covered"`
	Coverage   float64 `json:"coverage"`
	Identities int     `json:"identities"`
	Identity   float64 `json:"identity"`
}

// Comparison is the profile of one alignment.
type Comparison struct {
	RefName   string `json:"ref_name"`
	QueryName string `json:"query_name"`
	Score     int    `json:"score"`

	HighQualityMatches int `json:"high_quality_matches"`
	LowQualityMatches  int `json:"low_quality_matches"`
	HQMismatches       int `json:"hq_mismatches"`
	LQMismatches       int `json:"lq_mismatches"`
	LowKmerMismatches  int `json:"low_kmer_mismatches"`

	// indel events by size class; homopolymer weighting makes them fractional
	OneBaseIndel   float64 `json:"one_base_indel"`
	TwoBaseIndel   float64 `json:"two_base_indel"`
	LargeBaseIndel float64 `json:"large_base_indel"`
	// counted gaps that slip a tandem repeat
	TandemRepeatGaps int `json:"tandem_repeat_gaps"`

	Ref   Side `json:"ref"`
	Query Side `json:"query"`

	BasesInAln         int     `json:"bases_in_aln"`
	PercentMatch       float64 `json:"percent_match"`
	PercentMismatch    float64 `json:"percent_mismatch"`
	PercentGaps        float64 `json:"percent_gaps"`
	OverlappingEvents  int     `json:"overlapping_events"`
	EventBasedIdentity float64 `json:"event_based_identity"`

	// keyed by alignment column
	Gaps              map[int]Gap      `json:"gaps"`
	Mismatches        map[int]Mismatch `json:"mismatches"`
	LowKmerMismatchAt map[int]Mismatch `json:"low_kmer_mismatch_at"`
}

// NewComparison returns an empty Comparison.
func NewComparison() *Comparison {
	c := &Comparison{}
	c.Reset()
	return c
}

// Reset clears all counts. The position maps are replaced rather than
// cleared, so a copy taken before Reset keeps its events.
func (c *Comparison) Reset() {
	*c = Comparison{
		Gaps:              make(map[int]Gap),
		Mismatches:        make(map[int]Mismatch),
		LowKmerMismatchAt: make(map[int]Mismatch),
	}
}

// Matches returns all matching columns.
func (c *Comparison) Matches() int {
	return c.HighQualityMatches + c.LowQualityMatches
}

// IndelEvents returns the weighted number of indel events.
func (c *Comparison) IndelEvents() float64 {
	return c.OneBaseIndel + c.TwoBaseIndel + c.LargeBaseIndel
}

func (c *Comparison) String() string {
	return fmt.Sprintf("Comparison { ref: %s, query: %s, score: %d, matches: %d, mismatches: %d/%d/%d, indels: %.3f/%.3f/%.3f, identity: %.4f }",
		c.RefName, c.QueryName, c.Score, c.Matches(),
		c.HQMismatches, c.LQMismatches, c.LowKmerMismatches,
		c.OneBaseIndel, c.TwoBaseIndel, c.LargeBaseIndel, c.EventBasedIdentity)
}

// Options controls the profiling walk.
type Options struct {
	// CountEndGaps includes gaps touching either alignment end in the
	// counts. Otherwise they are reported nowhere.
	CountEndGaps bool `toml:"count-end-gaps" json:"count_end_gaps"`
	// UsingQuality splits mismatches by the quality Thresholds.
	UsingQuality bool `toml:"using-quality" json:"using_quality"`
	// DoingMatchQuality also splits matches by quality.
	DoingMatchQuality bool `toml:"match-quality" json:"match_quality"`
	// WeighHomopolymers down-weights indels inside homopolymer runs.
	WeighHomopolymers bool `toml:"weigh-homopolymers" json:"weigh_homopolymers"`
	// CheckKmer reports mismatches inside rare k-mers of Kmers separately.
	CheckKmer bool `toml:"check-kmer" json:"check_kmer"`

	Qual  quality.Thresholds `toml:"quality" json:"quality"`
	Kmers *kmer.Index        `toml:"-" json:"-"`
}

// DefaultOptions uses quality gating and homopolymer weighting with the
// default thresholds; end gaps are not counted.
func DefaultOptions() Options {
	return Options{
		UsingQuality:      true,
		WeighHomopolymers: true,
		Qual:              quality.DefaultThresholds(),
	}
}
