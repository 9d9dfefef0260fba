// Package quality provides Phred quality score handling for sequencing reads.
//
// Phred quality scores are logarithmically related to base-calling error probabilities:
//
//	Q = -10 * log10(P_error)
//
// Common thresholds:
//
//	Q10 = 90% accuracy
//	Q20 = 99% accuracy
//	Q30 = 99.9% accuracy
//	Q40 = 99.99% accuracy
package quality

import (
	"fmt"
	"math"
)

// Constants for Phred scores
const (
	PhredMin = 0
	PhredMax = 93
)

// DefaultQual is assigned to every base of a read given without qualities.
const DefaultQual = 40

// Encoding offsets.
const (
	Phred33 = 33
	Phred64 = 64
)

// QualityError is the base error type for quality decoding.
type QualityError interface {
	error
	IsQualityError()
}

// InvalidEncodingError is returned when a quality encoding character is invalid.
type InvalidEncodingError struct {
	Position int
	Char     byte
	Offset   int
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("invalid Phred+%d character '%c' at position %d", e.Offset, e.Char, e.Position)
}
func (e *InvalidEncodingError) IsQualityError() {}

// Decode converts an ASCII quality string to Phred scores: Q = ord(c) - offset.
func Decode(encoded []byte, offset int) ([]int, error) {
	scores := make([]int, len(encoded))
	for i, c := range encoded {
		q := int(c) - offset
		if q < PhredMin || q > PhredMax {
			return nil, &InvalidEncodingError{Position: i, Char: c, Offset: offset}
		}
		scores[i] = q
	}
	return scores, nil
}

// FromPhred33 decodes a Phred+33 quality string (Illumina 1.8+).
func FromPhred33(encoded []byte) ([]int, error) {
	return Decode(encoded, Phred33)
}

// FromPhred64 decodes a Phred+64 quality string (older Illumina).
func FromPhred64(encoded []byte) ([]int, error) {
	return Decode(encoded, Phred64)
}

// Encode converts Phred scores back to an ASCII quality string.
func Encode(scores []int, offset int) []byte {
	encoded := make([]byte, len(scores))
	for i, q := range scores {
		if q < PhredMin {
			q = PhredMin
		} else if q > PhredMax {
			q = PhredMax
		}
		encoded[i] = byte(q + offset)
	}
	return encoded
}

// ErrorProbability converts a Phred score to an error probability.
func ErrorProbability(q int) float64 {
	return math.Pow(10, -float64(q)/10)
}
