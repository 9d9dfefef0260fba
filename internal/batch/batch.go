// Package batch profiles many reads against a reference set, choosing the
// best-scoring reference for each read. Reads are spread over the aligners
// of a pool and results are delivered in input order.
package batch

import (
	"context"
	"sync"

	"github.com/aria-lang/seqalign/internal/aligner"
	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/internal/kmer"
	"github.com/aria-lang/seqalign/internal/pool"
	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/pkg/errors"
)

// Options controls how each read is aligned and profiled.
type Options struct {
	Mode alignment.Mode
	// Cache uses the aligners' caches.
	Cache bool
	// Primer profiles without quality or k-mer gating.
	Primer bool

	// K is the k-mer length of the prefilter.
	K int
	// Prefilter is the minimum k-mer similarity of a read/reference pair
	// worth aligning. 0 aligns every pair.
	Prefilter float64
}

// Result is the best alignment of one read.
type Result struct {
	Index int
	Read  *sequence.Read
	// Ref is nil when every reference was skipped by the prefilter.
	Ref        *sequence.Read
	Comparison profiler.Comparison
	Pair       alignment.AlignedPair

	Aligned int // references aligned
	Skipped int // references skipped by the prefilter
}

// Runner aligns reads against a fixed reference set.
type Runner struct {
	pool    *pool.Pool
	refs    []*sequence.Read
	refSets [][]uint64
	opts    Options
}

// NewRunner prepares refs for aligning with the aligners of p.
func NewRunner(p *pool.Pool, refs []*sequence.Read, opts Options) (*Runner, error) {
	if len(refs) == 0 {
		return nil, errors.New("batch: no reference sequences")
	}
	if opts.Prefilter < 0 || opts.Prefilter > 1 {
		return nil, errors.Errorf("batch: prefilter must be in [0, 1], got %g", opts.Prefilter)
	}

	r := &Runner{pool: p, refs: refs, opts: opts}
	if opts.Prefilter > 0 {
		if opts.K < 1 || opts.K > kmer.MaxK {
			return nil, errors.Errorf("batch: k-mer length must be in [1, %d], got %d", kmer.MaxK, opts.K)
		}
		r.refSets = make([][]uint64, len(refs))
		for i, ref := range refs {
			r.refSets[i] = kmer.Set(ref.Seq, opts.K)
		}
	}
	return r, nil
}

// Best aligns read against every reference with a and profiles the
// highest-scoring alignment. The first reference wins ties.
func (r *Runner) Best(a *aligner.Aligner, read *sequence.Read) (Result, error) {
	res := Result{Read: read}

	var readSet []uint64
	if r.refSets != nil {
		readSet = kmer.Set(read.Seq, r.opts.K)
	}

	best, bestScore, last := -1, 0, -1
	for i, ref := range r.refs {
		if readSet != nil && kmer.Similarity(readSet, r.refSets[i]) < r.opts.Prefilter {
			res.Skipped++
			continue
		}
		if err := r.align(a, ref, read); err != nil {
			return res, err
		}
		res.Aligned++
		last = i

		score := a.Result().Score
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return res, nil
	}

	if last != best {
		if err := r.align(a, r.refs[best], read); err != nil {
			return res, err
		}
	}
	res.Ref = r.refs[best]
	res.Pair = a.Pair()
	if r.opts.Primer {
		res.Comparison = a.ProfilePrimer()
	} else {
		res.Comparison = a.Profile()
	}
	return res, nil
}

func (r *Runner) align(a *aligner.Aligner, ref, read *sequence.Read) error {
	if r.opts.Cache {
		return a.AlignCache(ref, read, r.opts.Mode)
	}
	return a.Align(ref, read, r.opts.Mode)
}

// Run finds the best reference of every read using all aligners of the
// pool and calls visit with the results in the order of reads. It stops at
// the first error, including one returned by visit or the cancellation of
// ctx.
func (r *Runner) Run(parent context.Context, reads []*sequence.Read, visit func(Result) error) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	threads := r.pool.Size()
	jobs := make(chan int, threads*2)
	results := make(chan Result, threads*2)

	var (
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	// workers
	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				h, err := r.pool.CheckoutContext(ctx)
				if err != nil {
					fail(err)
					return
				}
				res, err := r.Best(h.Aligner, reads[idx])
				h.Close()
				if err != nil {
					fail(err)
					return
				}
				res.Index = idx

				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// collector, restoring input order
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make(map[int]Result, threads*2)
		next := 0
		for res := range results {
			buf[res.Index] = res
			for {
				res, ok := buf[next]
				if !ok {
					break
				}
				delete(buf, next)
				next++
				if ctx.Err() != nil {
					continue
				}
				if err := visit(res); err != nil {
					fail(err)
				}
			}
		}
	}()

feed:
	for i := range reads {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	<-done

	if firstErr != nil {
		return firstErr
	}
	return parent.Err()
}
