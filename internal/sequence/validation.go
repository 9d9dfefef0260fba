package sequence

import "fmt"

// SequenceError is the base error type for sequence operations.
type SequenceError interface {
	error
	IsSequenceError()
}

// InvalidLengthError is returned when the quality array of a read does not
// match its sequence length.
type InvalidLengthError struct {
	Expected int
	Actual   int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("expected %d quality values, got %d", e.Expected, e.Actual)
}

func (e *InvalidLengthError) IsSequenceError() {}

// InvalidBaseError is returned when an invalid base is encountered.
type InvalidBaseError struct {
	Position int
	Found    byte
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base '%c' at position %d", e.Found, e.Position)
}

func (e *InvalidBaseError) IsSequenceError() {}

// ValidateBases checks that bases contains only printable ASCII letters,
// '*' and '.'. The gap character is rejected since reads are ungapped.
func ValidateBases(bases string) error {
	for i := 0; i < len(bases); i++ {
		c := bases[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c == '*', c == '.':
		default:
			return &InvalidBaseError{Position: i, Found: c}
		}
	}
	return nil
}
