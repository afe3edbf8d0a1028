package semindex

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/viant/qterm/internal/kvstore"
)

func seedMemFiles(t *testing.T, fs afs.Service) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/docs/a.md", 0o644, strings.NewReader("alpha beta gamma delta")))
	require.NoError(t, fs.Upload(ctx, "mem://localhost/docs/b.go", 0o644, strings.NewReader("package main\n\nfunc main() {}\n")))
	require.NoError(t, fs.Upload(ctx, "mem://localhost/docs/skip.bin", 0o644, strings.NewReader("\x00\x01binary")))
}

func TestBuildWalksAndSkipsUnknownExtensions(t *testing.T) {
	fs := afs.New()
	seedMemFiles(t, fs)

	idx, err := Build(context.Background(), fs, "mem://localhost/docs", BuildOptions{})
	require.NoError(t, err)

	paths := make(map[string]bool)
	for _, e := range idx.Entries {
		paths[e.Metadata["path"].(string)] = true
	}
	assert.True(t, paths["mem://localhost/docs/a.md"])
	assert.True(t, paths["mem://localhost/docs/b.go"])
	assert.False(t, paths["mem://localhost/docs/skip.bin"])
}

func TestBuildAttachesChunkMetadata(t *testing.T) {
	fs := afs.New()
	seedMemFiles(t, fs)

	idx, err := Build(context.Background(), fs, "mem://localhost/docs", BuildOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, idx.Entries)

	for _, e := range idx.Entries {
		assert.Contains(t, e.Metadata, "chunk_index")
		assert.Contains(t, e.Metadata, "total_chunks")
		assert.Contains(t, e.Metadata, "file_type")
	}
}

func TestBuildSearchReturnsClosestEntry(t *testing.T) {
	fs := afs.New()
	ctx := context.Background()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/k/one.txt", 0o644, strings.NewReader("database migration rollback plan")))
	require.NoError(t, fs.Upload(ctx, "mem://localhost/k/two.txt", 0o644, strings.NewReader("unrelated cooking recipe for soup")))

	idx, err := Build(ctx, fs, "mem://localhost/k", BuildOptions{Embedder: NewBM25HashEmbedder(256)})
	require.NoError(t, err)

	emb := NewBM25HashEmbedder(256)
	qv := emb.Embed("database rollback")
	results := idx.Search(qv, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "mem://localhost/k/one.txt", results[0].Entry.Metadata["path"])
}

func TestSaveLoadRoundTripsEntries(t *testing.T) {
	fs := afs.New()
	seedMemFiles(t, fs)
	idx, err := Build(context.Background(), fs, "mem://localhost/docs", BuildOptions{})
	require.NoError(t, err)

	store := kvstore.NewFake()
	require.NoError(t, Save(store, idx))

	loaded, err := Load(store, idx.DataPath)
	require.NoError(t, err)
	assert.Equal(t, len(idx.Entries), len(loaded.Entries))
	assert.Equal(t, idx.Entries[0].PageContent, loaded.Entries[0].PageContent)

	results := loaded.Search(loaded.Entries[0].Vector, 1)
	require.Len(t, results, 1)
}

func TestLoadOnEmptyStoreYieldsEmptyIndex(t *testing.T) {
	store := kvstore.NewFake()
	idx, err := Load(store, "mem://localhost/docs")
	require.NoError(t, err)
	assert.Empty(t, idx.Entries)
	assert.Nil(t, idx.Search([]float32{1}, 1))
}
