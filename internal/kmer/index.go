// Package kmer provides k-mer frequency context for alignment profiling.
//
// An Index counts k-mers over a set of reads, weighted by read count, and
// answers whether the k-mer covering a mismatch is rare in that set. Rare
// k-mers point at sequencing artifacts rather than true variation.
package kmer

import (
	"fmt"
	"sort"

	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/pkg/errors"
	"github.com/shenwei356/kmers"
)

// MaxK is the largest k that fits a 2-bit encoded uint64.
const MaxK = 32

// Index holds weighted k-mer counts.
type Index struct {
	K      int
	Cutoff float64

	counts map[uint64]float64
	total  float64
}

// NewIndex creates an empty index. A k-mer counted below cutoff is
// considered low frequency.
func NewIndex(k int, cutoff float64) (*Index, error) {
	if k <= 0 || k > MaxK {
		return nil, errors.Errorf("k must be in [1, %d], got %d", MaxK, k)
	}
	if cutoff < 0 {
		return nil, errors.Errorf("k-mer cutoff must be non-negative")
	}

	return &Index{
		K:      k,
		Cutoff: cutoff,
		counts: make(map[uint64]float64, 1024),
	}, nil
}

// encode returns the code of a k-mer made of A, C, G and T only.
func encode(kmer []byte) (uint64, bool) {
	for _, c := range kmer {
		switch c {
		case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		default:
			return 0, false
		}
	}
	code, err := kmers.Encode(kmer)
	if err != nil {
		return 0, false
	}
	return code, true
}

// Add counts every k-mer of seq with weight count. K-mers containing
// ambiguous bases are skipped.
func (idx *Index) Add(seq string, count float64) {
	b := []byte(seq)
	for i := 0; i+idx.K <= len(b); i++ {
		code, ok := encode(b[i : i+idx.K])
		if !ok {
			continue
		}
		idx.counts[code] += count
		idx.total += count
	}
}

// AddReads counts the k-mers of every active read.
func (idx *Index) AddReads(reads []*sequence.Read) {
	for _, r := range reads {
		if r.On {
			idx.Add(r.Seq, r.Count)
		}
	}
}

// Count returns the weighted count of kmer. ok is false for k-mers that
// cannot be indexed (wrong length or ambiguous bases).
func (idx *Index) Count(kmer string) (count float64, ok bool) {
	if len(kmer) != idx.K {
		return 0, false
	}
	code, ok := encode([]byte(kmer))
	if !ok {
		return 0, false
	}
	return idx.counts[code], true
}

// IsLowFrequency reports whether kmer was counted below the cutoff.
// K-mers that cannot be indexed are never low frequency.
func (idx *Index) IsLowFrequency(kmer string) bool {
	count, ok := idx.Count(kmer)
	if !ok {
		return false
	}
	return count < idx.Cutoff
}

// Frequency returns the count of kmer relative to all counted k-mers.
func (idx *Index) Frequency(kmer string) float64 {
	if idx.total == 0 {
		return 0
	}
	count, _ := idx.Count(kmer)
	return count / idx.total
}

// UniqueCount returns the number of distinct k-mers.
func (idx *Index) UniqueCount() int {
	return len(idx.counts)
}

// Total returns the weighted number of counted k-mers.
func (idx *Index) Total() float64 {
	return idx.total
}

func (idx *Index) String() string {
	return fmt.Sprintf("KmerIndex { k: %d, unique: %d, total: %g, cutoff: %g }",
		idx.K, len(idx.counts), idx.total, idx.Cutoff)
}

// Set returns the distinct indexable k-mers of seq, sorted.
func Set(seq string, k int) []uint64 {
	if k <= 0 || k > MaxK {
		return nil
	}
	b := []byte(seq)
	seen := make(map[uint64]struct{}, len(b))
	for i := 0; i+k <= len(b); i++ {
		if code, ok := encode(b[i : i+k]); ok {
			seen[code] = struct{}{}
		}
	}
	codes := make([]uint64, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
