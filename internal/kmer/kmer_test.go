package kmer

import (
	"testing"

	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndex(t *testing.T) {
	tests := []struct {
		name    string
		k       int
		cutoff  float64
		wantErr bool
	}{
		{"valid k=3", 3, 2, false},
		{"valid k=32", 32, 0, false},
		{"invalid k=0", 0, 1, true},
		{"invalid k=33", 33, 1, true},
		{"negative cutoff", 5, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := NewIndex(tt.k, tt.cutoff)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.k, idx.K)
			}
		})
	}
}

func TestIndexCounts(t *testing.T) {
	idx, err := NewIndex(3, 2)
	require.NoError(t, err)

	idx.Add("ATGATGATG", 1)

	// ATG x3, TGA x2, GAT x2
	assert.Equal(t, 3, idx.UniqueCount())
	assert.Equal(t, 7.0, idx.Total())

	count, ok := idx.Count("ATG")
	require.True(t, ok)
	assert.Equal(t, 3.0, count)

	count, ok = idx.Count("atg")
	require.True(t, ok)
	assert.Equal(t, 3.0, count)

	count, ok = idx.Count("CCC")
	require.True(t, ok)
	assert.Equal(t, 0.0, count)

	_, ok = idx.Count("ATGA")
	assert.False(t, ok)

	assert.InDelta(t, 3.0/7.0, idx.Frequency("ATG"), 1e-9)
}

func TestIndexWeightsAndAmbiguity(t *testing.T) {
	idx, err := NewIndex(3, 5)
	require.NoError(t, err)

	reads := []*sequence.Read{
		sequence.MustNew("r1", "ACGTN", nil).WithCount(4),
		sequence.MustNew("r2", "ACG", nil).WithCount(2),
		sequence.MustNew("off", "TTT", nil),
	}
	reads[2].On = false
	idx.AddReads(reads)

	count, _ := idx.Count("ACG")
	assert.Equal(t, 6.0, count)
	count, _ = idx.Count("CGT")
	assert.Equal(t, 4.0, count)
	count, _ = idx.Count("TTT")
	assert.Equal(t, 0.0, count)

	assert.False(t, idx.IsLowFrequency("ACG"))
	assert.True(t, idx.IsLowFrequency("CGT"))
	assert.True(t, idx.IsLowFrequency("TTT"))
	assert.False(t, idx.IsLowFrequency("GTN"))
}

func TestSimilarity(t *testing.T) {
	a := Set("ACGTACGT", 3)
	b := Set("ACGTTTTT", 3)

	// a: ACG CGT GTA TAC ; b: ACG CGT GTT TTT
	assert.Len(t, a, 4)
	assert.Len(t, b, 4)
	assert.Equal(t, 2, Shared(a, b))
	assert.InDelta(t, 0.5, Similarity(a, b), 1e-9)
	assert.InDelta(t, 1-2.0/6.0, JaccardDistance(a, b), 1e-9)

	assert.Equal(t, 0.0, JaccardDistance(nil, nil))
	assert.Equal(t, 0.0, Similarity(a, nil))
	assert.Equal(t, 1.0, Similarity(a, a))
	assert.Nil(t, Set("ACGT", 0))
}
