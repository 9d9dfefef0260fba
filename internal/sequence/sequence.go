// Package sequence provides the read records consumed by the aligner.
//
// A Read carries its bases, one quality value per base and a count used to
// weigh frequency-sensitive decisions such as homopolymer indel weighting.
package sequence

import (
	"fmt"
	"strings"

	"github.com/aria-lang/seqalign/internal/quality"
)

// GapChar is the character inserted into aligned sequences.
const GapChar = '-'

// Read is a named sequence with per-base qualities.
type Read struct {
	Name  string
	Seq   string
	Qual  []int
	Count float64
	On    bool
}

// New creates a read. A nil qual is filled with quality.DefaultQual so that
// every read carries one value per base.
func New(name, seq string, qual []int) (*Read, error) {
	if qual == nil {
		qual = make([]int, len(seq))
		for i := range qual {
			qual[i] = quality.DefaultQual
		}
	} else if len(qual) != len(seq) {
		return nil, &InvalidLengthError{Expected: len(seq), Actual: len(qual)}
	}

	return &Read{
		Name:  name,
		Seq:   seq,
		Qual:  qual,
		Count: 1,
		On:    true,
	}, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(name, seq string, qual []int) *Read {
	r, err := New(name, seq, qual)
	if err != nil {
		panic(err)
	}
	return r
}

// WithCount sets the count of the read and returns it.
func (r *Read) WithCount(count float64) *Read {
	r.Count = count
	return r
}

// Len returns the length of the sequence.
func (r *Read) Len() int {
	return len(r.Seq)
}

// LeadQual returns the qualities of up to window bases before pos.
func (r *Read) LeadQual(pos, window int) []int {
	return quality.Lead(r.Qual, pos, window)
}

// TrailQual returns the qualities of up to window bases after pos.
func (r *Read) TrailQual(pos, window int) []int {
	return quality.Trail(r.Qual, pos, window)
}

// CheckQual reports whether the base at pos and its neighbourhood pass t.
func (r *Read) CheckQual(pos int, t quality.Thresholds) bool {
	return t.Pass(r.Qual, pos)
}

// KmerAt returns the k-mer covering pos, shifted to stay inside the read.
// It returns an empty string when the read is shorter than k.
func (r *Read) KmerAt(pos, k int) string {
	if k <= 0 || len(r.Seq) < k {
		return ""
	}
	start := pos - k/2
	if start < 0 {
		start = 0
	}
	if start > len(r.Seq)-k {
		start = len(r.Seq) - k
	}
	return r.Seq[start : start+k]
}

// MeanQual returns the mean quality of the read.
func (r *Read) MeanQual() float64 {
	if len(r.Qual) == 0 {
		return 0
	}
	sum := 0
	for _, q := range r.Qual {
		sum += q
	}
	return float64(sum) / float64(len(r.Qual))
}

// ToFASTA returns the read in FASTA format.
func (r *Read) ToFASTA() string {
	var sb strings.Builder
	sb.WriteByte('>')
	if r.Name != "" {
		sb.WriteString(r.Name)
	} else {
		sb.WriteString("sequence")
	}
	sb.WriteByte('\n')

	for i := 0; i < len(r.Seq); i += 80 {
		end := i + 80
		if end > len(r.Seq) {
			end = len(r.Seq)
		}
		sb.WriteString(r.Seq[i:end])
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (r *Read) String() string {
	return fmt.Sprintf("Read { name: %s, length: %d, count: %g }", r.Name, len(r.Seq), r.Count)
}

// RealPos returns the number of non-gap characters before alnPos in an
// aligned sequence, i.e. the position in the ungapped sequence.
func RealPos(aligned string, alnPos int) int {
	if alnPos > len(aligned) {
		alnPos = len(aligned)
	}
	n := 0
	for i := 0; i < alnPos; i++ {
		if aligned[i] != GapChar {
			n++
		}
	}
	return n
}

// AlnPos returns the column of the realPos-th non-gap character of an
// aligned sequence, or len(aligned) if there is no such character.
func AlnPos(aligned string, realPos int) int {
	n := 0
	for i := 0; i < len(aligned); i++ {
		if aligned[i] == GapChar {
			continue
		}
		if n == realPos {
			return i
		}
		n++
	}
	return len(aligned)
}
