package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLengthMismatch(t *testing.T) {
	_, err := New([]string{"a", "b"}, [][]float32{{1}})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSearchOrdersByScore(t *testing.T) {
	idx, err := New(
		[]string{"deductible info", "copay info", "unrelated"},
		[][]float32{{1, 0}, {0.7, 0.7}, {0, 1}},
	)
	require.NoError(t, err)

	results := idx.Search([]float32{1, 0}, 2)
	require.Len(t, results, 2)
	require.Equal(t, "deductible info", results[0].Chunk)
	require.Equal(t, 0, results[0].Position)
	require.Equal(t, "copay info", results[1].Chunk)
	require.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchKExceedsSize(t *testing.T) {
	idx, err := New([]string{"only"}, [][]float32{{1, 0}})
	require.NoError(t, err)
	require.Len(t, idx.Search([]float32{1, 0}, 5), 1)
}

func TestSearchZeroK(t *testing.T) {
	idx, err := New([]string{"only"}, [][]float32{{1, 0}})
	require.NoError(t, err)
	require.Nil(t, idx.Search([]float32{1, 0}, 0))
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-6)
	require.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	require.Zero(t, CosineSimilarity(nil, []float32{1}))
	require.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1}))
}
