// Package aligner bundles an alignment kernel, a scoring model, an
// alignment cache and a profile accumulator into one reusable engine.
//
// An Aligner is not safe for concurrent use. Parallel callers take one
// from a pool.
package aligner

import (
	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/internal/alncache"
	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/aria-lang/seqalign/internal/scoring"
	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/pkg/errors"
	"github.com/shenwei356/go-logging"
)

var log = logging.MustGetLogger("seqalign")

// Aligner aligns read pairs and profiles the last alignment.
type Aligner struct {
	// Options of Profile and ProfilePrimer.
	Options profiler.Options

	model  *scoring.Model
	kernel *alignment.Kernel
	cache  *alncache.Cache
	comp   *profiler.Comparison

	// last alignment
	ref, query *sequence.Read
	result     alignment.Result
	pair       alignment.AlignedPair

	alignmentsDone int
	cacheHits      int
}

// New creates an Aligner for sequences of up to maxSize bases with an
// empty cache.
func New(maxSize int, model *scoring.Model, opts profiler.Options) *Aligner {
	return NewWithCache(maxSize, model, opts, alncache.New())
}

// NewWithCache creates an Aligner using an existing cache.
func NewWithCache(maxSize int, model *scoring.Model, opts profiler.Options, cache *alncache.Cache) *Aligner {
	if model == nil {
		model = scoring.Default()
	}
	return &Aligner{
		Options: opts,
		model:   model,
		kernel:  alignment.NewKernel(maxSize),
		cache:   cache,
		comp:    profiler.NewComparison(),
	}
}

// Model returns the scoring model.
func (a *Aligner) Model() *scoring.Model {
	return a.model
}

// SetModel switches to another scoring model. Cached results of the old
// model stay in their own partition.
func (a *Aligner) SetModel(model *scoring.Model) {
	a.model = model
}

// MaxSize returns the longest sequence the aligner accepts.
func (a *Aligner) MaxSize() int {
	return a.kernel.MaxSize()
}

// Resize grows or shrinks the kernel buffers.
func (a *Aligner) Resize(maxSize int) {
	a.kernel.Resize(maxSize)
}

// Cache returns the aligner's cache.
func (a *Aligner) Cache() *alncache.Cache {
	return a.cache
}

// AlignmentsDone returns how many alignments were computed by dynamic
// programming. Cache hits are not counted.
func (a *Aligner) AlignmentsDone() int {
	return a.alignmentsDone
}

// CacheHits returns how many alignments were served from the cache.
func (a *Aligner) CacheHits() int {
	return a.cacheHits
}

// Align aligns ref against query without consulting the cache.
func (a *Aligner) Align(ref, query *sequence.Read, mode alignment.Mode) error {
	r, err := a.kernel.Align(ref.Seq, query.Seq, a.model, mode)
	if err != nil {
		return errors.Wrapf(err, "align %s against %s", query.Name, ref.Name)
	}
	a.alignmentsDone++
	a.set(ref, query, r)
	return nil
}

// AlignCache is Align with memoization: a pair already aligned under the
// same mode and model is rebuilt from the cache.
func (a *Aligner) AlignCache(ref, query *sequence.Read, mode alignment.Mode) error {
	id := a.model.ID()
	if r, ok := a.cache.Lookup(mode, id, ref.Seq, query.Seq); ok {
		a.cacheHits++
		a.set(ref, query, r)
		return nil
	}

	r, err := a.kernel.Align(ref.Seq, query.Seq, a.model, mode)
	if err != nil {
		return errors.Wrapf(err, "align %s against %s", query.Name, ref.Name)
	}
	a.alignmentsDone++
	a.cache.Store(mode, id, ref.Seq, query.Seq, r)
	a.set(ref, query, r)
	return nil
}

// NoAlign takes two sequences of equal length as already aligned, column
// by column, and scores them.
func (a *Aligner) NoAlign(ref, query *sequence.Read) error {
	if ref.Len() != query.Len() {
		return errors.Errorf("no-align needs sequences of equal length: %s (%d) vs %s (%d)",
			ref.Name, ref.Len(), query.Name, query.Len())
	}
	r := alignment.Result{
		Score: alignment.Rescore(ref.Seq, query.Seq, a.model),
		AEnd:  ref.Len(),
		BEnd:  query.Len(),
	}
	a.set(ref, query, r)
	return nil
}

func (a *Aligner) set(ref, query *sequence.Read, r alignment.Result) {
	a.ref, a.query = ref, query
	a.result = r
	a.pair = r.Pair(ref, query)
}

// Result returns the last alignment in compact form.
func (a *Aligner) Result() alignment.Result {
	return a.result.Clone()
}

// Pair returns the gapped pair of the last alignment.
func (a *Aligner) Pair() alignment.AlignedPair {
	return a.pair
}

// Profile profiles the last alignment with a.Options. The returned
// Comparison does not share state with later calls.
func (a *Aligner) Profile() profiler.Comparison {
	return a.ProfileRange(0, 0)
}

// ProfileRange profiles the alignment columns [start, stop) of the last
// alignment. A stop of 0 means the end.
func (a *Aligner) ProfileRange(start, stop int) profiler.Comparison {
	if a.ref == nil {
		return *profiler.NewComparison()
	}
	profiler.ProfileRange(a.comp, &a.pair, a.ref, a.query, a.model, a.Options, start, stop)
	a.comp.Score = a.result.Score
	return *a.comp
}

// ProfilePrimer profiles the last alignment without quality or k-mer
// gating.
func (a *Aligner) ProfilePrimer() profiler.Comparison {
	return a.ProfilePrimerRange(0, 0)
}

func (a *Aligner) ProfilePrimerRange(start, stop int) profiler.Comparison {
	if a.ref == nil {
		return *profiler.NewComparison()
	}
	profiler.ProfilePrimerRange(a.comp, &a.pair, a.ref, a.query, a.model, a.Options, start, stop)
	a.comp.Score = a.result.Score
	return *a.comp
}

// LoadCache merges the cache saved in dir.
func (a *Aligner) LoadCache(dir string) error {
	before := a.cache.Len()
	if err := a.cache.LoadFrom(dir); err != nil {
		return err
	}
	log.Debugf("aligner cache: %d new entries from %s", a.cache.Len()-before, dir)
	return nil
}

// SaveCache flushes the cache to dir.
func (a *Aligner) SaveCache(dir string) error {
	if err := a.cache.SaveTo(dir); err != nil {
		return err
	}
	log.Debugf("aligner cache: %d entries saved to %s", a.cache.Len(), dir)
	return nil
}
