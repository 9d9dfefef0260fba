// Package pool hands out Aligners to concurrent workers.
//
// A Pool owns a fixed number of Aligners. Checkout blocks until one is
// free and the returned PooledAligner puts it back on Close. Closing the
// pool waits for every Aligner and flushes its cache.
package pool

import (
	"context"
	"sync"
	"time"

	"github.com/aria-lang/seqalign/internal/aligner"
	"github.com/pkg/errors"
	"github.com/shenwei356/go-logging"
	"github.com/shenwei356/util/pathutil"
)

var log = logging.MustGetLogger("seqalign")

// ErrShutdownTimeout means some aligners were not returned in time. It
// indicates a leaked checkout.
var ErrShutdownTimeout = errors.New("aligner pool: timed out waiting for checked-out aligners")

// ErrClosed is returned when checking out from a closed pool.
var ErrClosed = errors.New("aligner pool: closed")

// Factory creates one Aligner of the pool.
type Factory func() (*aligner.Aligner, error)

// Pool is a fixed-size set of Aligners.
type Pool struct {
	size   int
	inDir  string
	outDir string

	queue chan *aligner.Aligner

	closeOnce sync.Once
	done      chan struct{}
}

// New creates n Aligners with factory. When inDir is set, every Aligner
// loads the cache saved there; a failed load is logged and the Aligner
// starts with an empty cache. When outDir is set, Close flushes the caches
// into it.
func New(n int, factory Factory, inDir, outDir string) (*Pool, error) {
	if n < 1 {
		return nil, errors.Errorf("aligner pool: size must be positive, got %d", n)
	}

	if inDir != "" {
		ok, err := pathutil.DirExists(inDir)
		if err != nil || !ok {
			log.Warningf("cache input dir not usable, starting with empty caches: %s", inDir)
			inDir = ""
		}
	}

	p := &Pool{
		size:   n,
		inDir:  inDir,
		outDir: outDir,
		queue:  make(chan *aligner.Aligner, n),
		done:   make(chan struct{}),
	}

	for i := 0; i < n; i++ {
		a, err := factory()
		if err != nil {
			return nil, errors.Wrapf(err, "aligner pool: create aligner %d", i)
		}
		if inDir != "" {
			if err = a.LoadCache(inDir); err != nil {
				log.Warningf("aligner %d: load cache from %s: %s", i, inDir, err)
			}
		}
		p.queue <- a
	}
	log.Debugf("aligner pool: %d aligners ready", n)

	return p, nil
}

// Size returns the number of Aligners owned by the pool.
func (p *Pool) Size() int {
	return p.size
}

// Outstanding returns the number of Aligners currently checked out, so
// Outstanding()+Available() is always Size(). Aligners collected by Close
// count as outstanding.
func (p *Pool) Outstanding() int {
	return p.size - len(p.queue)
}

// Available returns the number of Aligners waiting in the pool.
func (p *Pool) Available() int {
	return len(p.queue)
}

// Checkout blocks until an Aligner is free. It panics with ErrClosed
// when the pool is closed, before or while waiting.
func (p *Pool) Checkout() *PooledAligner {
	select {
	case <-p.done:
		panic(ErrClosed)
	default:
	}

	select {
	case a := <-p.queue:
		return p.handle(a)
	case <-p.done:
		panic(ErrClosed)
	}
}

// CheckoutContext is Checkout that gives up when ctx is done or the pool
// is closed.
func (p *Pool) CheckoutContext(ctx context.Context) (*PooledAligner, error) {
	select {
	case <-p.done:
		return nil, ErrClosed
	default:
	}

	select {
	case a := <-p.queue:
		return p.handle(a), nil
	case <-p.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pool) handle(a *aligner.Aligner) *PooledAligner {
	return &PooledAligner{Aligner: a, pool: p}
}

func (p *Pool) put(a *aligner.Aligner) {
	p.queue <- a
}

// Close waits until every Aligner is back and saves the caches to the
// output directory. It blocks forever if a checkout is never closed.
func (p *Pool) Close() error {
	return p.shutdown(nil)
}

// CloseTimeout is Close giving up after d with ErrShutdownTimeout. Caches
// of the Aligners collected before the timeout are still saved.
func (p *Pool) CloseTimeout(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	return p.shutdown(timer.C)
}

func (p *Pool) shutdown(timeout <-chan time.Time) error {
	err := ErrClosed
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.drain(timeout)
	})
	return err
}

func (p *Pool) drain(timeout <-chan time.Time) error {
	var firstErr error
	for i := 0; i < p.size; i++ {
		var a *aligner.Aligner
		select {
		case a = <-p.queue:
		case <-timeout:
			log.Errorf("aligner pool: %d of %d aligners not returned", p.size-i, p.size)
			if firstErr == nil {
				firstErr = ErrShutdownTimeout
			}
			return firstErr
		}

		if p.outDir == "" {
			continue
		}
		if err := a.SaveCache(p.outDir); err != nil {
			log.Warningf("aligner %d: save cache to %s: %s", i, p.outDir, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	log.Debugf("aligner pool: closed")
	return firstErr
}

// PooledAligner is an Aligner checked out of a Pool. Close returns it; a
// handle must not be used after Close.
type PooledAligner struct {
	*aligner.Aligner

	pool *Pool
	once sync.Once
}

// Close puts the Aligner back. Further calls do nothing.
func (h *PooledAligner) Close() {
	h.once.Do(func() {
		a := h.Aligner
		h.Aligner = nil
		h.pool.put(a)
	})
}
