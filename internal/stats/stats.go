// Package stats summarizes the profiles of many alignments.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Distribution describes one metric over a set of alignments.
type Distribution struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// NewDistribution computes the distribution of values. values is sorted in
// place.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sort.Float64s(values)

	d := Distribution{
		Min:    values[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, values, nil),
		Median: stat.Quantile(0.5, stat.Empirical, values, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, values, nil),
		Max:    values[len(values)-1],
		Mean:   stat.Mean(values, nil),
	}
	if len(values) > 1 {
		d.StdDev = stat.StdDev(values, nil)
	}
	if math.IsNaN(d.StdDev) {
		d.StdDev = 0
	}
	return d
}

func (d Distribution) String() string {
	return fmt.Sprintf("min %.4f, q1 %.4f, median %.4f, q3 %.4f, max %.4f, mean %.4f, sd %.4f",
		d.Min, d.Q1, d.Median, d.Q3, d.Max, d.Mean, d.StdDev)
}

// Summary aggregates the Comparisons of a batch.
type Summary struct {
	Count int `json:"count"`

	Score              Distribution `json:"score"`
	QueryIdentity      Distribution `json:"query_identity"`
	QueryCoverage      Distribution `json:"query_coverage"`
	EventBasedIdentity Distribution `json:"event_based_identity"`

	Matches           int     `json:"matches"`
	HQMismatches      int     `json:"hq_mismatches"`
	LQMismatches      int     `json:"lq_mismatches"`
	LowKmerMismatches int     `json:"low_kmer_mismatches"`
	IndelEvents       float64 `json:"indel_events"`
	BasesInAln        int     `json:"bases_in_aln"`

	// high quality mismatches and weighted indels per aligned base
	ErrorRate float64 `json:"error_rate"`
}

// Summarize aggregates comps. It fails on an empty set.
func Summarize(comps []profiler.Comparison) (*Summary, error) {
	if len(comps) == 0 {
		return nil, errors.Errorf("comparison list cannot be empty")
	}

	n := len(comps)
	scores := make([]float64, n)
	identity := make([]float64, n)
	coverage := make([]float64, n)
	events := make([]float64, n)

	s := &Summary{Count: n}
	for i := range comps {
		c := &comps[i]
		scores[i] = float64(c.Score)
		identity[i] = c.Query.Identity
		coverage[i] = c.Query.Coverage
		events[i] = c.EventBasedIdentity

		s.Matches += c.Matches()
		s.HQMismatches += c.HQMismatches
		s.LQMismatches += c.LQMismatches
		s.LowKmerMismatches += c.LowKmerMismatches
		s.IndelEvents += c.IndelEvents()
		s.BasesInAln += c.BasesInAln
	}

	s.Score = NewDistribution(scores)
	s.QueryIdentity = NewDistribution(identity)
	s.QueryCoverage = NewDistribution(coverage)
	s.EventBasedIdentity = NewDistribution(events)
	if s.BasesInAln > 0 {
		s.ErrorRate = (float64(s.HQMismatches) + s.IndelEvents) / float64(s.BasesInAln)
	}
	return s, nil
}

func (s *Summary) String() string {
	return fmt.Sprintf(`Summary {
  alignments: %d
  score: %s
  query identity: %s
  query coverage: %s
  event-based identity: %s
  matches: %d, mismatches (hq/lq/low k-mer): %d/%d/%d, indel events: %.2f
  error rate: %.6f
}`, s.Count, s.Score, s.QueryIdentity, s.QueryCoverage, s.EventBasedIdentity,
		s.Matches, s.HQMismatches, s.LQMismatches, s.LowKmerMismatches, s.IndelEvents,
		s.ErrorRate)
}

// Histogram bins values from [0, 1], such as identities.
type Histogram struct {
	Bins    []int
	BinSize float64
	NumBins int
}

// NewHistogram bins values into numBins equal bins over [0, 1]. Values
// outside the range go to the first or last bin.
func NewHistogram(values []float64, numBins int) (*Histogram, error) {
	if len(values) == 0 {
		return nil, errors.Errorf("value list cannot be empty")
	}
	if numBins <= 0 {
		return nil, errors.Errorf("numBins must be positive")
	}

	binSize := 1.0 / float64(numBins)
	bins := make([]int, numBins)

	for _, v := range values {
		binIndex := int(v / binSize)
		if binIndex >= numBins {
			binIndex = numBins - 1
		}
		if binIndex < 0 {
			binIndex = 0
		}
		bins[binIndex]++
	}

	return &Histogram{
		Bins:    bins,
		BinSize: binSize,
		NumBins: numBins,
	}, nil
}

// ModeBin returns the range of the fullest bin.
func (h *Histogram) ModeBin() (float64, float64) {
	maxCount := h.Bins[0]
	maxBin := 0

	for i, count := range h.Bins {
		if count > maxCount {
			maxCount = count
			maxBin = i
		}
	}

	start := float64(maxBin) * h.BinSize
	end := start + h.BinSize
	return start, end
}

func (h *Histogram) String() string {
	var sb strings.Builder
	sb.WriteString("Histogram:\n")
	for i := 0; i < h.NumBins; i++ {
		start := float64(i) * h.BinSize * 100
		end := start + h.BinSize*100
		count := h.Bins[i]

		fmt.Fprintf(&sb, "%5.1f-%5.1f%%: %s (%d)\n", start, end, strings.Repeat("#", count/10), count)
	}
	return sb.String()
}
