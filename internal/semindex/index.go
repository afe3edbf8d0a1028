package semindex

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// Index is the (data-path, entries, ann-index) triple §4.7 describes.
type Index struct {
	DataPath string
	Entries  []Entry
	ann      ANNIndex
}

// BuildOptions configures Build.
type BuildOptions struct {
	Chunk    ChunkOptions
	Embedder Embedder
}

// Build walks path (file or directory) via fs, reading every file whose
// extension is in the known-text set, chunking and embedding its content.
// Entries are produced in deterministic path, then chunk-index, order.
func Build(ctx context.Context, fs afs.Service, path string, opts BuildOptions) (*Index, error) {
	if opts.Embedder == nil {
		opts.Embedder = NewTFHashEmbedder(128)
	}

	files, err := walkTextFiles(ctx, fs, path)
	if err != nil {
		return nil, fmt.Errorf("semindex: walk %s: %w", path, err)
	}

	var entries []Entry
	for _, p := range files {
		data, err := fs.DownloadWithURL(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("semindex: read %s: %w", p, err)
		}
		chunks := Chunk(string(data), opts.Chunk)
		vectors := opts.Embedder.EmbedBatch(chunks)
		for i, c := range chunks {
			entries = append(entries, Entry{
				PageContent: c,
				Vector:      vectors[i],
				Metadata: map[string]any{
					"path":        p,
					"chunk_index": i,
					"total_chunks": len(chunks),
					"file_type":   strings.TrimPrefix(filepath.Ext(p), "."),
					"language":    languageFor(p),
				},
			})
		}
	}

	idx := &Index{DataPath: path, Entries: entries, ann: NewFlatIndex(entries)}
	return idx, nil
}

func walkTextFiles(ctx context.Context, fs afs.Service, path string) ([]string, error) {
	var files []string
	err := fs.Walk(ctx, path, func(ctx context.Context, baseURL string, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info == nil || info.IsDir() {
			return true, nil
		}
		if !knownTextExtensions[strings.ToLower(filepath.Ext(info.Name()))] {
			return true, nil
		}
		var p string
		if parent == "" {
			p = url.Join(baseURL, info.Name())
		} else {
			p = url.Join(baseURL, parent, info.Name())
		}
		files = append(files, p)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func languageFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".java":
		return "java"
	case ".rs":
		return "rust"
	case ".c", ".h":
		return "c"
	case ".cpp":
		return "cpp"
	case ".sh":
		return "shell"
	case ".sql":
		return "sql"
	default:
		return ""
	}
}

// Search runs cosine k-NN against the index's built ANN index. If no
// entries were ever indexed, it returns nil (the "no ANN index present"
// case collapses to the zero-entry FlatIndex, which already returns nil).
func (idx *Index) Search(query []float32, k int) []SearchResult {
	if idx.ann == nil {
		return nil
	}
	return idx.ann.Search(query, k)
}

// Rebuild replaces the in-memory ANN index from Entries, used after Load
// repopulates Entries from disk.
func (idx *Index) Rebuild() {
	idx.ann = NewFlatIndex(idx.Entries)
}
