package pool

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aria-lang/seqalign/internal/aligner"
	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/internal/alncache"
	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/aria-lang/seqalign/internal/scoring"
	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func factory() (*aligner.Aligner, error) {
	return aligner.New(100, scoring.Default(), profiler.DefaultOptions()), nil
}

func TestNew(t *testing.T) {
	_, err := New(0, factory, "", "")
	assert.Error(t, err)

	_, err = New(2, func() (*aligner.Aligner, error) {
		return nil, errors.New("boom")
	}, "", "")
	assert.Error(t, err)

	p, err := New(3, factory, filepath.Join(t.TempDir(), "missing"), "")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Size())
	assert.Equal(t, 3, p.Available())
	assert.Equal(t, 0, p.Outstanding())
	require.NoError(t, p.Close())
}

func TestCheckoutInvariant(t *testing.T) {
	p, err := New(4, factory, "", "")
	require.NoError(t, err)

	ref := sequence.MustNew("ref", "ACGTTTTACGGATC", nil)
	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				h := p.Checkout()
				assert.Equal(t, p.Size(), p.Outstanding()+p.Available())
				query := sequence.MustNew(fmt.Sprintf("q%d", i), "ACGTACGGTTC"[:5+i%6], nil)
				assert.NoError(t, h.AlignCache(ref, query, alignment.Global))
				h.Profile()
				h.Close()
				assert.Equal(t, p.Size(), p.Outstanding()+p.Available())
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 0, p.Outstanding())
	assert.Equal(t, p.Size(), p.Available())
	require.NoError(t, p.Close())
}

func TestHandleCloseTwice(t *testing.T) {
	p, err := New(1, factory, "", "")
	require.NoError(t, err)

	h := p.Checkout()
	assert.Equal(t, 1, p.Outstanding())
	h.Close()
	h.Close()
	assert.Equal(t, 0, p.Outstanding())
	assert.Equal(t, 1, p.Available())
	assert.Nil(t, h.Aligner)
}

func TestCloseFlushesCaches(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cache")
	p, err := New(2, factory, "", out)
	require.NoError(t, err)

	ref := sequence.MustNew("ref", "ACGTTTTACGGATC", nil)
	h1 := p.Checkout()
	h2 := p.Checkout()
	require.NoError(t, h1.AlignCache(ref, sequence.MustNew("a", "ACGTACG", nil), alignment.Global))
	require.NoError(t, h2.AlignCache(ref, sequence.MustNew("b", "TTTTACG", nil), alignment.Local))

	done := make(chan error, 1)
	go func() { done <- p.Close() }()

	h1.Close()
	h2.Close()
	require.NoError(t, <-done)

	c := alncache.New()
	require.NoError(t, c.LoadFrom(out))
	assert.Equal(t, 2, c.Len())

	// a new pool starts from the flushed caches
	p2, err := New(1, factory, out, "")
	require.NoError(t, err)
	h := p2.Checkout()
	require.NoError(t, h.AlignCache(ref, sequence.MustNew("a", "ACGTACG", nil), alignment.Global))
	assert.Equal(t, 1, h.CacheHits())
	assert.Equal(t, 0, h.AlignmentsDone())
	h.Close()
	require.NoError(t, p2.Close())
}

func TestCloseTimeout(t *testing.T) {
	p, err := New(2, factory, "", "")
	require.NoError(t, err)

	leaked := p.Checkout()
	err = p.CloseTimeout(20 * time.Millisecond)
	assert.Equal(t, ErrShutdownTimeout, err)
	assert.NotNil(t, leaked.Aligner)

	assert.Equal(t, ErrClosed, p.Close())
}

func TestCheckoutContext(t *testing.T) {
	p, err := New(1, factory, "", "")
	require.NoError(t, err)

	h, err := p.CheckoutContext(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.CheckoutContext(ctx)
	assert.Equal(t, context.DeadlineExceeded, err)

	h.Close()
	require.NoError(t, p.Close())

	_, err = p.CheckoutContext(context.Background())
	assert.Equal(t, ErrClosed, err)
}

func TestCheckoutClosed(t *testing.T) {
	p, err := New(1, factory, "", "")
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.PanicsWithValue(t, ErrClosed, func() { p.Checkout() })

	// a waiting checkout is released by Close
	p, err = New(1, factory, "", "")
	require.NoError(t, err)
	h := p.Checkout()

	released := make(chan interface{})
	go func() {
		defer func() { released <- recover() }()
		p.Checkout()
	}()
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, ErrShutdownTimeout, p.CloseTimeout(10*time.Millisecond))
	select {
	case v := <-released:
		assert.Equal(t, ErrClosed, v)
	case <-time.After(time.Second):
		t.Fatal("checkout still blocked after close")
	}
	h.Close()
}
