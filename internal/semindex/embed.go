package semindex

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Embedder maps text to a fixed-dimension, L2-normalised vector. Both
// implementations are deterministic given the same input (§4.7).
type Embedder interface {
	Embed(text string) []float32
	EmbedBatch(texts []string) [][]float32
	Dim() int
}

func tokenizeWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hashBucket(token string, d int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(d))
}

func l2Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// TFHashEmbedder tokenises on whitespace and punctuation, hashes each token
// into one of Dim buckets, increments, and L2-normalises. It is the
// fallback embedder for platforms without a real model.
type TFHashEmbedder struct {
	dim int
}

// NewTFHashEmbedder returns a TFHashEmbedder with the given vector
// dimension (128 if dim <= 0).
func NewTFHashEmbedder(dim int) *TFHashEmbedder {
	if dim <= 0 {
		dim = 128
	}
	return &TFHashEmbedder{dim: dim}
}

func (e *TFHashEmbedder) Dim() int { return e.dim }

func (e *TFHashEmbedder) Embed(text string) []float32 {
	v := make([]float32, e.dim)
	for _, tok := range tokenizeWords(strings.ToLower(text)) {
		v[hashBucket(tok, e.dim)]++
	}
	return l2Normalize(v)
}

func (e *TFHashEmbedder) EmbedBatch(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.Embed(t)
	}
	return out
}

// BM25HashEmbedder computes sparse BM25 term weights over the batch passed
// to EmbedBatch (its own corpus), then folds each document's weights into a
// dim-sized dense vector by hashing the token to a bucket, and
// L2-normalises. A single-document Embed call has no corpus statistics:
// every term gets the same IDF, so only BM25's saturated term-frequency
// factor distinguishes terms.
type BM25HashEmbedder struct {
	dim        int
	k1, b      float64
}

// NewBM25HashEmbedder returns a BM25HashEmbedder with the canonical k1=1.2,
// b=0.75 tuning and the given vector dimension (128 if dim <= 0).
func NewBM25HashEmbedder(dim int) *BM25HashEmbedder {
	if dim <= 0 {
		dim = 128
	}
	return &BM25HashEmbedder{dim: dim, k1: 1.2, b: 0.75}
}

func (e *BM25HashEmbedder) Dim() int { return e.dim }

// Embed scores text against itself as a single-document corpus; use
// EmbedBatch for corpus-aware weighting.
func (e *BM25HashEmbedder) Embed(text string) []float32 {
	return e.EmbedBatch([]string{text})[0]
}

func (e *BM25HashEmbedder) EmbedBatch(texts []string) [][]float32 {
	docs := make([][]string, len(texts))
	docFreq := make(map[string]int)
	var totalLen int
	for i, t := range texts {
		docs[i] = tokenizeWords(strings.ToLower(t))
		totalLen += len(docs[i])
		seen := make(map[string]bool)
		for _, tok := range docs[i] {
			if !seen[tok] {
				docFreq[tok]++
				seen[tok] = true
			}
		}
	}
	n := len(texts)
	avgLen := 1.0
	if n > 0 {
		avgLen = float64(totalLen) / float64(n)
	}

	idf := func(token string) float64 {
		df := float64(docFreq[token])
		return math.Log(1 + (float64(n)-df+0.5)/(df+0.5))
	}

	out := make([][]float32, n)
	for i, toks := range docs {
		tf := make(map[string]int, len(toks))
		for _, tok := range toks {
			tf[tok]++
		}
		v := make([]float32, e.dim)
		dl := float64(len(toks))
		for tok, f := range tf {
			num := float64(f) * (e.k1 + 1)
			den := float64(f) + e.k1*(1-e.b+e.b*dl/avgLen)
			weight := idf(tok) * num / den
			v[hashBucket(tok, e.dim)] += float32(weight)
		}
		out[i] = l2Normalize(v)
	}
	return out
}
