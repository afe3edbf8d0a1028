// Package semindex implements the semantic index over files: chunking,
// pluggable embedding, a flat cosine-similarity scan behind an ANN-index
// interface, and JSON persistence through the Key-Value Store discipline.
package semindex

import "strings"

// DefaultChunkSize and DefaultOverlap are the chunker's defaults (§4.7).
const (
	DefaultChunkSize = 256
	DefaultOverlap   = 32
)

// ChunkOptions controls Chunk's window size and carry-over.
type ChunkOptions struct {
	ChunkSize int
	Overlap   int
}

func (o ChunkOptions) withDefaults() ChunkOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Overlap < 0 || o.Overlap >= o.ChunkSize {
		o.Overlap = DefaultOverlap
	}
	return o
}

// Chunk tokenizes text on whitespace and emits successive windows of
// opts.ChunkSize tokens, each overlapping the previous by opts.Overlap
// tokens. A text with fewer tokens than ChunkSize produces exactly one
// chunk; an empty text produces none.
func Chunk(text string, opts ChunkOptions) []string {
	opts = opts.withDefaults()
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	stride := opts.ChunkSize - opts.Overlap
	var chunks []string
	for start := 0; start < len(tokens); start += stride {
		end := start + opts.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[start:end], " "))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}
