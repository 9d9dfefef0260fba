package scoring

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/zeebo/wyhash"
)

// Model combines a substitution matrix with gap costs. A Model must not be
// modified after construction; its ID is computed once and used to
// partition cached alignments.
type Model struct {
	matrix *Matrix
	gaps   GapScores
	id     string
}

// NewModel creates a model. The matrix is copied.
func NewModel(m *Matrix, gaps GapScores) (*Model, error) {
	if m == nil {
		return nil, errors.New("scoring: nil substitution matrix")
	}
	if err := gaps.Validate(); err != nil {
		return nil, errors.Wrap(err, "scoring")
	}

	mat := *m
	return &Model{
		matrix: &mat,
		gaps:   gaps,
		id:     fmt.Sprintf("%s:%016x", gaps.ID(), wyhash.Hash(mat.bytes(), 0)),
	}, nil
}

// Simple creates a model with a simple match/mismatch matrix.
func Simple(match, mismatch int, gaps GapScores) (*Model, error) {
	return NewModel(NewSimpleMatrix(match, mismatch), gaps)
}

// Default returns match 2, mismatch -2 and gap costs 5/1 everywhere.
func Default() *Model {
	m, _ := Simple(2, -2, NewGapScores(5, 1))
	return m
}

// ID returns the stable identifier derived from the gap costs and the
// substitution matrix.
func (m *Model) ID() string {
	return m.id
}

// Gaps returns the gap costs.
func (m *Model) Gaps() GapScores {
	return m.gaps
}

// Matrix returns the substitution matrix. Callers must not modify it.
func (m *Model) Matrix() *Matrix {
	return m.matrix
}

// Score returns the substitution score of a against b.
func (m *Model) Score(a, b byte) int {
	return m.matrix[a][b]
}

func (m *Model) String() string {
	return fmt.Sprintf("Model { id: %s }", m.id)
}
