// Package mcpsupervisor owns the pool of live MCP Client connections
// (§4.12): lazy spawn on first use, idle-TTL reaping, and reconciliation
// against the on-disk MCP Server Config file driven by `/mcp add|remove`.
package mcpsupervisor

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/viant/mcp-protocol/schema"
)

// DefaultTTL is how long an idle client survives before Reap closes it,
// grounded on the teacher's internal/mcp/manager default.
const DefaultTTL = 30 * time.Minute

// Client is the slice of mcpclient.Client the supervisor depends on, so
// tests can substitute a fake rather than spawning a real child process.
type Client interface {
	Name() string
	Tools() []schema.Tool
	CallTool(ctx context.Context, name string, arguments map[string]any) (*schema.CallToolResult, error)
	Close() error
}

// Connector spawns and initializes a Client for sc, mirroring
// mcpclient.Connect's signature so the real implementation plugs in
// directly.
type Connector func(ctx context.Context, sc ServerConfig) (Client, error)

type entry struct {
	client Client
	config ServerConfig
	usedAt time.Time
}

// Supervisor is the pool of live servers keyed by name.
type Supervisor struct {
	connect Connector
	ttl     time.Duration

	mu      sync.Mutex
	pool    map[string]*entry
	desired map[string]ServerConfig
}

// New builds a Supervisor that uses connect to spawn clients on demand.
func New(connect Connector, ttl time.Duration) *Supervisor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Supervisor{connect: connect, ttl: ttl, pool: make(map[string]*entry), desired: make(map[string]ServerConfig)}
}

// Get returns the live Client for name, lazily spawning it from desired
// config if not already pooled.
func (s *Supervisor) Get(ctx context.Context, name string) (Client, error) {
	s.mu.Lock()
	if e, ok := s.pool[name]; ok {
		e.usedAt = time.Now()
		s.mu.Unlock()
		return e.client, nil
	}
	sc, ok := s.desired[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("mcpsupervisor: no configured server %q", name)
	}

	cli, err := s.connect(ctx, sc)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pool[name] = &entry{client: cli, config: sc, usedAt: time.Now()}
	s.mu.Unlock()
	return cli, nil
}

// Status is one server's liveness as reported without forcing a spawn.
type Status struct {
	Name      string
	Connected bool
	LastUsed  time.Time
}

// StatusAll reports every configured server's liveness (§4.12: "doctor and
// /mcp status query the supervisor for per-server liveness without
// forcing a spawn").
func (s *Supervisor) StatusAll() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Status, 0, len(s.desired))
	for name := range s.desired {
		st := Status{Name: name}
		if e, ok := s.pool[name]; ok {
			st.Connected = true
			st.LastUsed = e.usedAt
		}
		out = append(out, st)
	}
	return out
}

// Reap closes and drops every client idle beyond the TTL.
func (s *Supervisor) Reap() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	var stale []*entry
	for name, e := range s.pool {
		if e.usedAt.Before(cutoff) {
			stale = append(stale, e)
			delete(s.pool, name)
		}
	}
	s.mu.Unlock()
	for _, e := range stale {
		_ = e.client.Close()
	}
}

// Reconcile sets the desired server set to cfg.Servers: servers removed
// from cfg are stopped immediately; servers whose config changed are
// stopped so the next Get respawns them with the new config; untouched
// servers are left connected.
func (s *Supervisor) Reconcile(cfg *ConfigFile) {
	next := make(map[string]ServerConfig, len(cfg.Servers))
	for _, sc := range cfg.Servers {
		next[sc.Name] = sc
	}

	s.mu.Lock()
	var toClose []*entry
	for name, e := range s.pool {
		sc, stillDesired := next[name]
		if !stillDesired || !sc.equal(e.config) {
			toClose = append(toClose, e)
			delete(s.pool, name)
		}
	}
	s.desired = next
	s.mu.Unlock()

	for _, e := range toClose {
		_ = e.client.Close()
	}
}

// Close tears down every pooled client.
func (s *Supervisor) Close() {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.pool))
	for name, e := range s.pool {
		entries = append(entries, e)
		delete(s.pool, name)
	}
	s.mu.Unlock()
	for _, e := range entries {
		_ = e.client.Close()
	}
}

func (sc ServerConfig) equal(other ServerConfig) bool {
	if sc.Command != other.Command || sc.TimeoutMs != other.TimeoutMs || len(sc.Args) != len(other.Args) || len(sc.Env) != len(other.Env) {
		return false
	}
	for i, a := range sc.Args {
		if other.Args[i] != a {
			return false
		}
	}
	for k, v := range sc.Env {
		if other.Env[k] != v {
			return false
		}
	}
	return reflect.DeepEqual(sc.StartupInitParams, other.StartupInitParams)
}
