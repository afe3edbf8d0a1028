// Package kvstore implements the small JSON document store settings,
// trust policy, and MCP server state are persisted through (§4.8): get/
// set/remove/get_typed over a single file, guarded by an advisory file
// lock so multiple qterm processes never interleave writes.
package kvstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// Store is a JSON document persisted at Path. Every Get/Set/Remove
// acquires the advisory lock, rereads the current file (another process
// may have written since this Store's last read), mutates, and rewrites
// atomically.
type Store struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex // serializes this process's own callers around the same fd
}

// Open returns a Store backed by path, creating the parent directory and
// an empty `{}` document if neither exists yet.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("kvstore: create dir %s: %w", dir, err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			return nil, fmt.Errorf("kvstore: init %s: %w", path, err)
		}
	}
	return &Store{path: path, lock: flock.New(path + ".lock")}, nil
}

func (s *Store) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("kvstore: acquire lock: %w", err)
	}
	defer s.lock.Unlock()
	return fn()
}

func (s *Store) readDoc() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("kvstore: read %s: %w", s.path, err)
	}
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &doc); err != nil {
		// Corrupt document: fail safe to an empty one rather than leaving a
		// partially written file in place for the next reader.
		if werr := s.writeDoc(map[string]json.RawMessage{}); werr != nil {
			return nil, fmt.Errorf("kvstore: reset corrupt document: %w (original: %v)", werr, err)
		}
		return map[string]json.RawMessage{}, nil
	}
	return doc, nil
}

func (s *Store) writeDoc(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		// Serialization failure must not leave a half-written file; restore
		// to an empty document instead.
		_ = os.WriteFile(s.path, []byte("{}"), 0o600)
		return fmt.Errorf("kvstore: marshal document: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("kvstore: write temp file: %w", err)
	}
	f, err := os.OpenFile(tmp, os.O_WRONLY, 0o600)
	if err == nil {
		_ = f.Sync()
		_ = f.Close()
	}
	return os.Rename(tmp, s.path)
}

// Get returns the raw JSON value for key, or ok=false if absent.
func (s *Store) Get(key string) (raw json.RawMessage, ok bool, err error) {
	err = s.withLock(func() error {
		doc, rerr := s.readDoc()
		if rerr != nil {
			return rerr
		}
		raw, ok = doc[key]
		return nil
	})
	return
}

// GetTyped unmarshals key's value into v. It returns ok=false (and a nil
// error) if key is absent.
func (s *Store) GetTyped(key string, v any) (ok bool, err error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	return true, json.Unmarshal(raw, v)
}

// Set stores v (marshaled to JSON) under key.
func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kvstore: marshal value for %s: %w", key, err)
	}
	return s.withLock(func() error {
		doc, rerr := s.readDoc()
		if rerr != nil {
			return rerr
		}
		doc[key] = raw
		return s.writeDoc(doc)
	})
}

// Remove deletes key, a no-op if it is already absent.
func (s *Store) Remove(key string) error {
	return s.withLock(func() error {
		doc, rerr := s.readDoc()
		if rerr != nil {
			return rerr
		}
		delete(doc, key)
		return s.writeDoc(doc)
	})
}
