package semindex

import "github.com/viant/qterm/internal/kvstore"

const entriesKey = "entries"

// Save persists idx.Entries to store under entriesKey, going through the
// Key-Value Store's lock/read/rewrite/flush discipline rather than a bare
// file write.
func Save(store kvstore.Interface, idx *Index) error {
	return store.Set(entriesKey, idx.Entries)
}

// Load reads entries back from store and rebuilds an Index's in-memory ANN
// index over them. A store with no entriesKey yet yields an empty Index.
func Load(store kvstore.Interface, dataPath string) (*Index, error) {
	var entries []Entry
	if _, err := store.GetTyped(entriesKey, &entries); err != nil {
		return nil, err
	}
	idx := &Index{DataPath: dataPath, Entries: entries}
	idx.Rebuild()
	return idx, nil
}
