package session

import (
	"sync"
	"time"
)

// Registry is the process-wide table of live shell sessions keyed by opaque
// id (§4.2). Go's sync.Mutex enters a starvation mode under sustained
// contention that hands the lock to the longest-waiting goroutine, which is
// what the spec's "fair mutex" requirement relies on — a caller blocked
// behind a long edit-buffer update is not perpetually skipped.
type Registry struct {
	mu         sync.Mutex
	sessions   map[string]*Record
	mostRecent string
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Record)}
}

// Insert adds rec and marks it as the most-recent session.
func (reg *Registry) Insert(rec *Record) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.sessions[rec.ID] = rec
	reg.mostRecent = rec.ID
}

// UpdateWith applies f to the record named id and promotes it to
// most-recent, provided the session exists and is not dead. It returns false
// (no promotion, f not called) otherwise.
func (reg *Registry) UpdateWith(id string, f func(*Record)) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rec, ok := reg.sessions[id]
	if !ok || rec.IsDead() {
		return false
	}
	f(rec)
	reg.mostRecent = id
	return true
}

// WithMostRecent applies f to whatever session was last active. It returns
// false if there is no most-recent session or it is dead.
func (reg *Registry) WithMostRecent(f func(*Record)) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.mostRecent == "" {
		return false
	}
	rec, ok := reg.sessions[reg.mostRecent]
	if !ok || rec.IsDead() {
		return false
	}
	f(rec)
	return true
}

// Remove tombstones the session named id by setting DeadSince, dropping any
// pending responses (I2), and clearing the most-recent pointer if it named
// this session.
func (reg *Registry) Remove(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rec, ok := reg.sessions[id]
	if !ok {
		return
	}
	if rec.DeadSince == nil {
		now := time.Now()
		rec.DeadSince = &now
	}
	rec.DropAllPending()
	if reg.mostRecent == id {
		reg.mostRecent = ""
	}
}

// Get returns the record for id without promoting it, and whether it exists
// and is alive. Intended for read-only inspection (e.g. a tool asking for a
// specific session's context rather than the most recent one).
func (reg *Registry) Get(id string) (*Record, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rec, ok := reg.sessions[id]
	if !ok || rec.IsDead() {
		return nil, false
	}
	return rec, true
}

// Len reports the number of tracked sessions, live or dead.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.sessions)
}
