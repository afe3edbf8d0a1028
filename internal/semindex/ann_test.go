package semindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatIndexSearchOrdersByAscendingDistance(t *testing.T) {
	entries := []Entry{
		{PageContent: "a", Vector: []float32{1, 0}},
		{PageContent: "b", Vector: []float32{0, 1}},
		{PageContent: "c", Vector: []float32{0.9, 0.1}},
	}
	idx := NewFlatIndex(entries)

	results := idx.Search([]float32{1, 0}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Entry.PageContent)
	assert.Equal(t, "c", results[1].Entry.PageContent)
	assert.Less(t, results[0].Distance, results[1].Distance)
}

func TestFlatIndexSearchOnEmptyIndexReturnsNil(t *testing.T) {
	idx := NewFlatIndex(nil)
	assert.Nil(t, idx.Search([]float32{1, 0}, 5))
	assert.Equal(t, 0, idx.Len())
}

func TestFlatIndexSearchCapsKAtEntryCount(t *testing.T) {
	idx := NewFlatIndex([]Entry{{Vector: []float32{1, 0}}})
	results := idx.Search([]float32{1, 0}, 10)
	assert.Len(t, results, 1)
}

func TestCosineDistanceIdenticalVectorsIsZero(t *testing.T) {
	assert.InDelta(t, 0, cosineDistance([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-6)
}

func TestCosineDistanceOrthogonalVectorsIsOne(t *testing.T) {
	assert.InDelta(t, 1, cosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-6)
}
