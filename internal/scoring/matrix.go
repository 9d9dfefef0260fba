// Package scoring provides the substitution matrix and affine gap costs used
// by the alignment kernel.
package scoring

import (
	"encoding/binary"
	"fmt"
)

// Matrix is a substitution matrix over every byte value.
type Matrix [256][256]int

// iupac maps each nucleotide symbol to the set of bases (A=1, C=2, G=4, T=8)
// it can represent. U is treated as T.
var iupac = map[byte]uint8{
	'A': 1, 'C': 2, 'G': 4, 'T': 8, 'U': 8,
	'R': 1 | 4, 'Y': 2 | 8, 'S': 2 | 4, 'W': 1 | 8, 'K': 4 | 8, 'M': 1 | 2,
	'B': 2 | 4 | 8, 'D': 1 | 4 | 8, 'H': 1 | 2 | 8, 'V': 1 | 2 | 4,
	'N': 1 | 2 | 4 | 8,
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// NewSimpleMatrix returns a case-insensitive identity matrix: match for
// equal symbols, mismatch otherwise.
func NewSimpleMatrix(match, mismatch int) *Matrix {
	m := new(Matrix)
	for a := 0; a < 256; a++ {
		ua := upper(byte(a))
		for b := 0; b < 256; b++ {
			if ua == upper(byte(b)) {
				m[a][b] = match
			} else {
				m[a][b] = mismatch
			}
		}
	}
	return m
}

// NewDegenerateMatrix returns a case-insensitive nucleotide matrix aware of
// IUPAC ambiguity codes. Two canonical bases score match or mismatch. When
// either side is degenerate the pair scores degenerateMatch if the two
// symbols can represent a common base and degenerateMismatch otherwise.
// Symbols outside the IUPAC alphabet fall back to NewSimpleMatrix rules.
func NewDegenerateMatrix(match, mismatch, degenerateMatch, degenerateMismatch int) *Matrix {
	m := NewSimpleMatrix(match, mismatch)
	for a := 0; a < 256; a++ {
		sa, okA := iupac[upper(byte(a))]
		if !okA {
			continue
		}
		for b := 0; b < 256; b++ {
			sb, okB := iupac[upper(byte(b))]
			if !okB {
				continue
			}
			canonical := isCanonical(sa) && isCanonical(sb)
			switch {
			case canonical && sa == sb:
				m[a][b] = match
			case canonical:
				m[a][b] = mismatch
			case sa&sb != 0:
				m[a][b] = degenerateMatch
			default:
				m[a][b] = degenerateMismatch
			}
		}
	}
	return m
}

func isCanonical(set uint8) bool {
	return set == 1 || set == 2 || set == 4 || set == 8
}

// Score returns the substitution score of a against b.
func (m *Matrix) Score(a, b byte) int {
	return m[a][b]
}

// Set assigns the score of a pair, in both orders.
func (m *Matrix) Set(a, b byte, score int) {
	m[a][b] = score
	m[b][a] = score
}

// bytes serializes the matrix row by row as big-endian int32.
func (m *Matrix) bytes() []byte {
	buf := make([]byte, 256*256*4)
	i := 0
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			binary.BigEndian.PutUint32(buf[i:], uint32(int32(m[a][b])))
			i += 4
		}
	}
	return buf
}

func (m *Matrix) String() string {
	return fmt.Sprintf("Matrix { A/A: %d, A/C: %d, A/N: %d }", m['A']['A'], m['A']['C'], m['A']['N'])
}
