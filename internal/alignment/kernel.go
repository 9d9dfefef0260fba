package alignment

import (
	"math"

	"github.com/aria-lang/seqalign/internal/scoring"
)

// AlignDirection is a traceback move. It also names the three DP states:
// a column pairing two bases (Diagonal), a base of A against a gap (Up)
// and a base of B against a gap (Left).
type AlignDirection uint8

const (
	// Diagonal represents a match or mismatch
	Diagonal AlignDirection = iota
	// Up represents a gap in sequence B
	Up
	// Left represents a gap in sequence A
	Left
	// Stop marks the start of a local alignment
	Stop
)

// negInf leaves room below it for gap costs, so negInf-cost does not wrap
// where int is 32 bits.
const negInf = math.MinInt32 / 2

// Kernel holds the score and traceback buffers for sequences up to
// MaxSize bases. A Kernel is not safe for concurrent use.
type Kernel struct {
	maxSize int

	// state scores, addressed with idx(i, j, w)
	diag []int
	up   []int
	left []int

	// predecessor states of diag (bits 0-1), up (bits 2-3) and left (bits 4-5)
	pointers []uint8

	ops []AlignDirection
}

// NewKernel allocates buffers for sequences of up to maxSize bases.
func NewKernel(maxSize int) *Kernel {
	k := &Kernel{}
	k.Resize(maxSize)
	return k
}

// Resize reallocates the buffers for a new maximum size.
func (k *Kernel) Resize(maxSize int) {
	if maxSize < 0 {
		maxSize = 0
	}
	n := (maxSize + 1) * (maxSize + 1)
	k.maxSize = maxSize
	k.diag = make([]int, n)
	k.up = make([]int, n)
	k.left = make([]int, n)
	k.pointers = make([]uint8, n)
	k.ops = make([]AlignDirection, 0, 2*maxSize)
}

// MaxSize returns the longest sequence the kernel accepts.
func (k *Kernel) MaxSize() int {
	return k.maxSize
}

func idx(i, j, w int) int {
	return i*w + j
}

// Align computes the optimal alignment of a against b. Ties are broken by
// the fixed priority diagonal > up > left so that equal inputs always
// produce the same alignment.
func (k *Kernel) Align(a, b string, model *scoring.Model, mode Mode) (Result, error) {
	if len(a) > k.maxSize {
		return Result{}, &SizeError{Len: len(a), MaxSize: k.maxSize}
	}
	if len(b) > k.maxSize {
		return Result{}, &SizeError{Len: len(b), MaxSize: k.maxSize}
	}

	if mode == Local {
		return k.local(a, b, model), nil
	}
	return k.global(a, b, model), nil
}

// verticalCosts returns the gap costs for an Up move landing in column j.
// Column 0 precedes every base of B and column m follows them all.
func verticalCosts(g *scoring.GapScores, j, m int) (int, int) {
	switch j {
	case m:
		return g.RightOpen, g.RightExtend
	case 0:
		return g.LeftOpen, g.LeftExtend
	}
	return g.Open, g.Extend
}

// horizontalCosts returns the gap costs for a Left move landing in row i.
func horizontalCosts(g *scoring.GapScores, i, n int) (int, int) {
	switch i {
	case n:
		return g.RightOpen, g.RightExtend
	case 0:
		return g.LeftOpen, g.LeftExtend
	}
	return g.Open, g.Extend
}

// best3 picks the highest of three state scores, earlier states winning ties.
func best3(d, u, l int) (int, AlignDirection) {
	best, from := d, Diagonal
	if u > best {
		best, from = u, Up
	}
	if l > best {
		best, from = l, Left
	}
	return best, from
}

func (k *Kernel) global(a, b string, model *scoring.Model) Result {
	n, m := len(a), len(b)
	w := m + 1
	g := model.Gaps()
	mat := model.Matrix()
	D, U, L, P := k.diag, k.up, k.left, k.pointers

	D[0], U[0], L[0], P[0] = 0, negInf, negInf, 0

	// first column: only gaps in B
	for i := 1; i <= n; i++ {
		c, prev := idx(i, 0, w), idx(i-1, 0, w)
		open, ext := verticalCosts(&g, 0, m)
		var from AlignDirection
		U[c], from = best3(D[prev]-open, U[prev]-ext, L[prev]-open)
		D[c], L[c] = negInf, negInf
		P[c] = uint8(from) << 2
	}

	// first row: only gaps in A
	for j := 1; j <= m; j++ {
		c, prev := idx(0, j, w), idx(0, j-1, w)
		open, ext := horizontalCosts(&g, 0, n)
		var from AlignDirection
		L[c], from = best3(D[prev]-open, U[prev]-open, L[prev]-ext)
		D[c], U[c] = negInf, negInf
		P[c] = uint8(from) << 4
	}

	for i := 1; i <= n; i++ {
		row := &mat[a[i-1]]
		hOpen, hExt := horizontalCosts(&g, i, n)
		for j := 1; j <= m; j++ {
			c := idx(i, j, w)

			d := c - w - 1
			dBest, dFrom := best3(D[d], U[d], L[d])
			D[c] = dBest + row[b[j-1]]

			u := c - w
			vOpen, vExt := verticalCosts(&g, j, m)
			var uFrom AlignDirection
			U[c], uFrom = best3(D[u]-vOpen, U[u]-vExt, L[u]-vOpen)

			l := c - 1
			var lFrom AlignDirection
			L[c], lFrom = best3(D[l]-hOpen, U[l]-hOpen, L[l]-hExt)

			P[c] = uint8(dFrom) | uint8(uFrom)<<2 | uint8(lFrom)<<4
		}
	}

	end := idx(n, m, w)
	score, state := best3(D[end], U[end], L[end])
	if n == 0 && m == 0 {
		score = 0
	}

	k.ops = k.ops[:0]
	i, j := n, m
	for i > 0 || j > 0 {
		c := idx(i, j, w)
		k.ops = append(k.ops, state)
		switch state {
		case Diagonal:
			state = AlignDirection(P[c] & 3)
			i--
			j--
		case Up:
			state = AlignDirection(P[c] >> 2 & 3)
			i--
		case Left:
			state = AlignDirection(P[c] >> 4 & 3)
			j--
		}
	}

	return k.result(score, 0, n, 0, m)
}

func (k *Kernel) local(a, b string, model *scoring.Model) Result {
	n, m := len(a), len(b)
	w := m + 1
	g := model.Gaps()
	mat := model.Matrix()
	D, U, L, P := k.diag, k.up, k.left, k.pointers

	for j := 0; j <= m; j++ {
		D[j], U[j], L[j], P[j] = negInf, negInf, negInf, uint8(Stop)
	}
	for i := 1; i <= n; i++ {
		c := idx(i, 0, w)
		D[c], U[c], L[c], P[c] = negInf, negInf, negInf, uint8(Stop)
	}

	maxScore, maxI, maxJ := 0, 0, 0
	for i := 1; i <= n; i++ {
		row := &mat[a[i-1]]
		for j := 1; j <= m; j++ {
			c := idx(i, j, w)

			d := c - w - 1
			dBest, dFrom := best3(D[d], U[d], L[d])
			if dBest <= 0 {
				dBest, dFrom = 0, Stop
			}
			D[c] = dBest + row[b[j-1]]

			u := c - w
			var uFrom AlignDirection
			U[c], uFrom = best3(D[u]-g.Open, U[u]-g.Extend, L[u]-g.Open)

			l := c - 1
			var lFrom AlignDirection
			L[c], lFrom = best3(D[l]-g.Open, U[l]-g.Open, L[l]-g.Extend)

			P[c] = uint8(dFrom) | uint8(uFrom)<<2 | uint8(lFrom)<<4

			if D[c] > maxScore {
				maxScore, maxI, maxJ = D[c], i, j
			}
		}
	}

	k.ops = k.ops[:0]
	if maxScore == 0 {
		return Result{}
	}

	i, j := maxI, maxJ
	state := Diagonal
	for state != Stop {
		c := idx(i, j, w)
		k.ops = append(k.ops, state)
		switch state {
		case Diagonal:
			state = AlignDirection(P[c] & 3)
			i--
			j--
		case Up:
			state = AlignDirection(P[c] >> 2 & 3)
			i--
		case Left:
			state = AlignDirection(P[c] >> 4 & 3)
			j--
		}
	}

	return k.result(maxScore, i, maxI, j, maxJ)
}

// result converts the reversed traceback moves in k.ops into a Result.
func (k *Kernel) result(score, aStart, aEnd, bStart, bEnd int) Result {
	r := Result{
		Score:  score,
		AStart: aStart,
		AEnd:   aEnd,
		BStart: bStart,
		BEnd:   bEnd,
	}

	col := 0
	for x := len(k.ops) - 1; x >= 0; {
		op := k.ops[x]
		if op == Diagonal {
			col++
			x--
			continue
		}
		size := 0
		for x >= 0 && k.ops[x] == op {
			size++
			x--
		}
		r.Gaps = append(r.Gaps, GapInfo{Pos: col, Size: size, InA: op == Left})
		col += size
	}
	return r
}
