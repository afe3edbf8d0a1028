package kvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	return s
}

func TestOpenCreatesEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.json")
	_, err := Open(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(data))
}

func TestSetThenGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("profile", map[string]string{"name": "default"}))

	raw, ok, err := s.Get("profile")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"default"}`, string(raw))
}

func TestGetTypedReportsAbsentKey(t *testing.T) {
	s := newTestStore(t)
	var v map[string]string
	ok, err := s.GetTyped("missing", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetTypedUnmarshalsValue(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("trust", []string{"fs_read", "execute_bash"}))

	var names []string
	ok, err := s.GetTyped("trust", &names)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"fs_read", "execute_bash"}, names)
}

func TestRemoveDeletesKey(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Remove("k"))

	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveOfAbsentKeyIsNoop(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Remove("never-existed"))
}

func TestCorruptDocumentResetsToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	// Open only ensures the file exists; corruption is only detected (and
	// reset) on first read through readDoc, exercised here via Get.
	_, ok, err := s.Get("anything")
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(data))
}

func TestFakeMatchesStoreSemantics(t *testing.T) {
	f := NewFake()
	var v string
	ok, err := f.GetTyped("missing", &v)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Set("name", "qterm"))
	ok, err = f.GetTyped("name", &v)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "qterm", v)

	require.NoError(t, f.Remove("name"))
	_, ok, err = f.Get("name")
	require.NoError(t, err)
	assert.False(t, ok)
}
