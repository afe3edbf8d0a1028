package semindex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestTFHashEmbedderDeterministic(t *testing.T) {
	e := NewTFHashEmbedder(64)
	a := e.Embed("the quick brown fox")
	b := e.Embed("the quick brown fox")
	assert.Equal(t, a, b)
}

func TestTFHashEmbedderIsNormalized(t *testing.T) {
	e := NewTFHashEmbedder(64)
	v := e.Embed("alpha beta alpha gamma")
	assert.InDelta(t, 1.0, vectorNorm(v), 1e-5)
}

func TestTFHashEmbedderEmptyTextYieldsZeroVector(t *testing.T) {
	e := NewTFHashEmbedder(16)
	v := e.Embed("")
	require.Len(t, v, 16)
	assert.Equal(t, 0.0, vectorNorm(v))
}

func TestBM25HashEmbedderDeterministic(t *testing.T) {
	e := NewBM25HashEmbedder(64)
	texts := []string{"alpha beta gamma", "alpha alpha delta"}
	a := e.EmbedBatch(texts)
	b := e.EmbedBatch(texts)
	assert.Equal(t, a, b)
}

func TestBM25HashEmbedderIsNormalized(t *testing.T) {
	e := NewBM25HashEmbedder(32)
	vecs := e.EmbedBatch([]string{"quick brown fox jumps", "lazy dog sleeps"})
	for _, v := range vecs {
		assert.InDelta(t, 1.0, vectorNorm(v), 1e-5)
	}
}

func TestBM25HashEmbedderWeightsRareTermsHigher(t *testing.T) {
	e := NewBM25HashEmbedder(4096)
	corpus := []string{
		"common common common rare",
		"common common common",
		"common common common",
	}
	vecs := e.EmbedBatch(corpus)
	rareBucket := hashBucket("rare", 4096)
	commonBucket := hashBucket("common", 4096)
	assert.Greater(t, vecs[0][rareBucket], vecs[0][commonBucket])
}
