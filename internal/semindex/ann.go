package semindex

import (
	"math"
	"sort"
)

// SearchResult pairs an Entry with its cosine distance from the query
// vector (0 = identical direction, 2 = opposite). Callers rank ascending.
type SearchResult struct {
	Entry    Entry
	Distance float32
}

// ANNIndex is the interface a cosine k-NN index exposes. FlatIndex below
// is a brute-force scan behind it; no HNSW/IVF library in the pack fits a
// dependency-free on-disk index at this scale (see DESIGN.md), so swapping
// in an approximate index later is non-breaking.
type ANNIndex interface {
	Search(query []float32, k int) []SearchResult
	Len() int
}

// FlatIndex scans every entry's vector in array order and computes exact
// cosine distance. Search on an empty index returns nil, matching the
// "no ANN index present -> empty" contract.
type FlatIndex struct {
	entries []Entry
}

// NewFlatIndex builds a FlatIndex over entries in the order given.
func NewFlatIndex(entries []Entry) *FlatIndex {
	return &FlatIndex{entries: entries}
}

func (idx *FlatIndex) Len() int { return len(idx.entries) }

func (idx *FlatIndex) Search(query []float32, k int) []SearchResult {
	if len(idx.entries) == 0 || k <= 0 {
		return nil
	}
	results := make([]SearchResult, len(idx.entries))
	for i, e := range idx.entries {
		results[i] = SearchResult{Entry: e, Distance: cosineDistance(query, e.Vector)}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

func cosineDistance(a, b []float32) float32 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return float32(1 - cos)
}
