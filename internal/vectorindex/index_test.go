package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddKeepsInsertionOrder(t *testing.T) {
	ix := New(2)

	require.NoError(t, ix.Add([][]float32{{1, 0}, {0, 1}}))
	require.NoError(t, ix.Add([][]float32{{2, 2}}))
	assert.Equal(t, 3, ix.Len())

	// Row i must stay the i-th vector added: an exact query for each vector
	// returns its own position at distance zero.
	for i, q := range [][]float32{{1, 0}, {0, 1}, {2, 2}} {
		matches := ix.Search(q, 1)
		require.Len(t, matches, 1)
		assert.Equal(t, i, matches[0].Position)
		assert.InDelta(t, 0, matches[0].Distance, 1e-9)
	}
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	ix := New(3)
	err := ix.Add([][]float32{{1, 2}})
	assert.Error(t, err)
	assert.Equal(t, 0, ix.Len())
}

func TestSearchOrdersByAscendingDistance(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([][]float32{{0, 0}, {3, 4}, {1, 1}}))

	matches := ix.Search([]float32{0, 0}, 3)
	require.Len(t, matches, 3)
	assert.Equal(t, []int{0, 2, 1}, []int{matches[0].Position, matches[1].Position, matches[2].Position})
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i].Distance, matches[i-1].Distance)
	}
}

func TestSearchCapsAtK(t *testing.T) {
	ix := New(1)
	require.NoError(t, ix.Add([][]float32{{1}, {2}, {3}, {4}}))

	assert.Len(t, ix.Search([]float32{0}, 2), 2)
	assert.Len(t, ix.Search([]float32{0}, 10), 4)
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := New(4)
	assert.Empty(t, ix.Search([]float32{0, 0, 0, 0}, 5))
}
