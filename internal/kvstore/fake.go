package kvstore

import (
	"encoding/json"
	"sync"
)

// Interface is the surface Store exposes; code that persists state should
// depend on this rather than *Store so tests can substitute Fake.
type Interface interface {
	Get(key string) (json.RawMessage, bool, error)
	GetTyped(key string, v any) (bool, error)
	Set(key string, v any) error
	Remove(key string) error
}

var (
	_ Interface = (*Store)(nil)
	_ Interface = (*Fake)(nil)
)

// Fake is an in-memory Interface implementation with Store's semantics
// (including get_typed's ok=false-on-absent contract), used in place of a
// locked on-disk file in unit tests.
type Fake struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

// NewFake returns an empty Fake store.
func NewFake() *Fake {
	return &Fake{docs: make(map[string]json.RawMessage)}
}

func (f *Fake) Get(key string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.docs[key]
	return raw, ok, nil
}

func (f *Fake) GetTyped(key string, v any) (bool, error) {
	raw, ok, _ := f.Get(key)
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func (f *Fake) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[key] = raw
	return nil
}

func (f *Fake) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, key)
	return nil
}
