// Package seqalign provides a high-level API for pairwise sequence
// alignment and alignment profiling.
//
// Example usage:
//
//	ref := seqalign.MustNewRead("ref", "GCAAATGCCGTA", nil)
//	query := seqalign.MustNewRead("read1", "GCAAAATGCCGTA", nil)
//
//	a := seqalign.NewAligner(400, seqalign.DefaultModel(), seqalign.DefaultOptions())
//	if err := a.AlignCache(ref, query, seqalign.Global); err != nil {
//	    log.Fatal(err)
//	}
//	pair := a.Pair()
//	fmt.Println(pair.Format())
//	fmt.Println(a.Profile())
package seqalign

import (
	"fmt"
	"io"

	"github.com/aria-lang/seqalign/internal/aligner"
	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/internal/config"
	"github.com/aria-lang/seqalign/internal/kmer"
	"github.com/aria-lang/seqalign/internal/pool"
	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/aria-lang/seqalign/internal/quality"
	"github.com/aria-lang/seqalign/internal/scoring"
	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/aria-lang/seqalign/internal/stats"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
)

// Re-export types for convenience
type (
	Read          = sequence.Read
	Mode          = alignment.Mode
	Model         = scoring.Model
	GapScores     = scoring.GapScores
	Result        = alignment.Result
	AlignedPair   = alignment.AlignedPair
	Comparison    = profiler.Comparison
	Options       = profiler.Options
	Thresholds    = quality.Thresholds
	KmerIndex     = kmer.Index
	Aligner       = aligner.Aligner
	Pool          = pool.Pool
	PooledAligner = pool.PooledAligner
	Config        = config.Config
	Summary       = stats.Summary
)

// Alignment modes
const (
	Global = alignment.Global
	Local  = alignment.Local
)

// Version is the version of seqalign.
const Version = "0.3.0"

// NewRead creates a read. A nil qual gives every base the default quality.
func NewRead(name, seq string, qual []int) (*Read, error) {
	if err := sequence.ValidateBases(seq); err != nil {
		return nil, errors.Wrap(err, name)
	}
	return sequence.New(name, seq, qual)
}

// MustNewRead is like NewRead but panics on error.
func MustNewRead(name, seq string, qual []int) *Read {
	r, err := NewRead(name, seq, qual)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultModel returns match 2, mismatch -2 with gap open 5 and extend 1.
func DefaultModel() *Model {
	return scoring.Default()
}

// NewModel creates a simple match/mismatch model.
func NewModel(match, mismatch int, gaps GapScores) (*Model, error) {
	return scoring.Simple(match, mismatch, gaps)
}

// NewGapScores uses the same costs for internal and end gaps.
func NewGapScores(open, extend int) GapScores {
	return scoring.NewGapScores(open, extend)
}

// DefaultOptions returns the default profiling options.
func DefaultOptions() Options {
	return profiler.DefaultOptions()
}

// NewAligner creates an Aligner for sequences of up to maxSize bases.
func NewAligner(maxSize int, model *Model, opts Options) *Aligner {
	return aligner.New(maxSize, model, opts)
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads settings from a TOML file.
func LoadConfig(file string) (*Config, error) {
	return config.Load(file)
}

// Align aligns two sequences once with the default model.
func Align(a, b string, mode Mode) (Result, AlignedPair, error) {
	ra, err := NewRead("a", a, nil)
	if err != nil {
		return Result{}, AlignedPair{}, err
	}
	rb, err := NewRead("b", b, nil)
	if err != nil {
		return Result{}, AlignedPair{}, err
	}

	size := len(a)
	if len(b) > size {
		size = len(b)
	}
	r, err := alignment.NewKernel(size).Align(a, b, scoring.Default(), mode)
	if err != nil {
		return Result{}, AlignedPair{}, err
	}
	return r, r.Pair(ra, rb), nil
}

// Summarize computes batch statistics over comparisons.
func Summarize(comps []Comparison) (*Summary, error) {
	return stats.Summarize(comps)
}

// ReadFile reads all records of a FASTA or FASTQ file, plain or
// compressed. FASTQ qualities are decoded as Phred+33.
func ReadFile(file string) ([]*Read, error) {
	reader, err := fastx.NewReader(nil, file, "")
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	defer reader.Close()

	reads := make([]*Read, 0, 1024)
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, file)
		}

		var qual []int
		if len(record.Seq.Qual) > 0 {
			if qual, err = quality.FromPhred33(record.Seq.Qual); err != nil {
				return nil, errors.Wrapf(err, "%s: %s", file, record.ID)
			}
		}
		r, err := NewRead(string(record.ID), string(record.Seq.Seq), qual)
		if err != nil {
			return nil, errors.Wrap(err, file)
		}
		reads = append(reads, r)
	}
	return reads, nil
}

// Info returns information about seqalign.
func Info() string {
	return fmt.Sprintf(`seqalign v%s
Pairwise sequence alignment and alignment profiling

Components:
  - Affine-gap global and local alignment
  - Alignment cache persisted per scoring model
  - Quality-aware alignment profiles
  - Concurrent aligner pool
  - Batch statistics`, Version)
}
