package sequence

import (
	"errors"
	"testing"

	"github.com/aria-lang/seqalign/internal/quality"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default qualities", func(t *testing.T) {
		r, err := New("r1", "ACGT", nil)
		require.NoError(t, err)
		assert.Equal(t, []int{40, 40, 40, 40}, r.Qual)
		assert.Equal(t, 1.0, r.Count)
		assert.True(t, r.On)
	})

	t.Run("quality length mismatch", func(t *testing.T) {
		_, err := New("r1", "ACGT", []int{30, 30})
		require.Error(t, err)

		var lenErr *InvalidLengthError
		require.True(t, errors.As(err, &lenErr))
		assert.Equal(t, 4, lenErr.Expected)
		assert.Equal(t, 2, lenErr.Actual)
	})

	t.Run("empty read", func(t *testing.T) {
		r, err := New("empty", "", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, r.Len())
		assert.Equal(t, 0.0, r.MeanQual())
	})
}

func TestQualityWindows(t *testing.T) {
	r := MustNew("r", "ACGTACGT", []int{10, 20, 30, 40, 35, 25, 15, 5})

	assert.Equal(t, []int{20, 30}, r.LeadQual(3, 2))
	assert.Equal(t, []int{35, 25}, r.TrailQual(3, 2))
	assert.Equal(t, []int{10}, r.LeadQual(1, 5))
	assert.Empty(t, r.TrailQual(7, 3))

	th := quality.Thresholds{Primary: 30, Secondary: 20, Window: 1}
	assert.True(t, r.CheckQual(3, th))
	assert.False(t, r.CheckQual(2, th))
}

func TestKmerAt(t *testing.T) {
	r := MustNew("r", "AACCGGTT", nil)

	tests := []struct {
		pos  int
		k    int
		want string
	}{
		{0, 3, "AAC"},
		{4, 3, "CGG"},
		{7, 3, "GTT"},
		{3, 8, "AACCGGTT"},
		{3, 9, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, r.KmerAt(tt.pos, tt.k))
	}
}

func TestPositionTranslation(t *testing.T) {
	aligned := "AC--GT-A"

	assert.Equal(t, 0, RealPos(aligned, 0))
	assert.Equal(t, 2, RealPos(aligned, 4))
	assert.Equal(t, 4, RealPos(aligned, 7))
	assert.Equal(t, 5, RealPos(aligned, 100))

	assert.Equal(t, 0, AlnPos(aligned, 0))
	assert.Equal(t, 4, AlnPos(aligned, 2))
	assert.Equal(t, 7, AlnPos(aligned, 4))
	assert.Equal(t, len(aligned), AlnPos(aligned, 5))

	for real := 0; real < 5; real++ {
		assert.Equal(t, real, RealPos(aligned, AlnPos(aligned, real)))
	}
}

func TestValidateBases(t *testing.T) {
	require.NoError(t, ValidateBases("ACGTNacgtnRYKM"))

	err := ValidateBases("AC-GT")
	require.Error(t, err)
	var baseErr *InvalidBaseError
	require.True(t, errors.As(err, &baseErr))
	assert.Equal(t, 2, baseErr.Position)
}

func TestToFASTA(t *testing.T) {
	r := MustNew("read1", "ACGT", nil)
	assert.Equal(t, ">read1\nACGT\n", r.ToFASTA())
}
