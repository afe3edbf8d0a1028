package contextmgr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/url"

	"github.com/viant/qterm/internal/kvstore"
)

// DefaultMaxFileBytes caps how much of a single context file is read.
const DefaultMaxFileBytes = 256 * 1024

// Logger receives a skip reason for a file or hook the manager could not
// read, mirroring the spec's "logged and skipped" contract. Defaults to a
// no-op if unset.
type Logger func(path string, err error)

// Manager owns the global profile, the set of named profiles, and the
// currently active one, persisting the set through a Key-Value Store.
type Manager struct {
	mu       sync.RWMutex
	fs       afs.Service
	store    kvstore.Interface
	profiles map[string]*Profile
	active   string
	maxBytes int64
	logger   Logger
}

const profilesKey = "context_profiles"

type persistedState struct {
	Profiles map[string]*Profile
	Active   string
}

// New constructs a Manager backed by fs for file I/O and store for
// persistence. It loads any previously saved profile set, or seeds a
// "global" and "default" profile on first use.
func New(fs afs.Service, store kvstore.Interface, logger Logger) (*Manager, error) {
	if fs == nil {
		fs = afs.New()
	}
	if logger == nil {
		logger = func(string, error) {}
	}
	m := &Manager{fs: fs, store: store, maxBytes: DefaultMaxFileBytes, logger: logger}

	var saved persistedState
	if store != nil {
		ok, err := store.GetTyped(profilesKey, &saved)
		if err != nil {
			return nil, fmt.Errorf("contextmgr: load profiles: %w", err)
		}
		if ok {
			m.profiles = saved.Profiles
			m.active = saved.Active
		}
	}
	if m.profiles == nil {
		m.profiles = map[string]*Profile{
			GlobalProfileName:  {Name: GlobalProfileName},
			DefaultProfileName: {Name: DefaultProfileName},
		}
		m.active = DefaultProfileName
	}
	return m, nil
}

func (m *Manager) persist() error {
	if m.store == nil {
		return nil
	}
	return m.store.Set(profilesKey, persistedState{Profiles: m.profiles, Active: m.active})
}

// Create adds a new empty profile, failing if the name is already taken.
func (m *Manager) Create(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.profiles[name]; exists {
		return fmt.Errorf("contextmgr: profile %q already exists", name)
	}
	m.profiles[name] = &Profile{Name: name}
	return m.persist()
}

// Delete removes a profile. The "default" profile can never be destroyed.
func (m *Manager) Delete(name string) error {
	if name == DefaultProfileName {
		return fmt.Errorf("contextmgr: the default profile cannot be deleted")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.profiles[name]; !exists {
		return fmt.Errorf("contextmgr: no such profile %q", name)
	}
	delete(m.profiles, name)
	if m.active == name {
		m.active = DefaultProfileName
	}
	return m.persist()
}

// SetActive switches the active profile.
func (m *Manager) SetActive(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.profiles[name]; !exists {
		return fmt.Errorf("contextmgr: no such profile %q", name)
	}
	m.active = name
	return m.persist()
}

// Active returns the active profile's name.
func (m *Manager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// List returns every profile name, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.profiles))
	for n := range m.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AddPath appends a glob to the named profile.
func (m *Manager) AddPath(profile, glob string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[profile]
	if !ok {
		return fmt.Errorf("contextmgr: no such profile %q", profile)
	}
	p.Paths = append(p.Paths, glob)
	return m.persist()
}

// AddHook appends a hook to the named profile.
func (m *Manager) AddHook(profile string, hook HookSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[profile]
	if !ok {
		return fmt.Errorf("contextmgr: no such profile %q", profile)
	}
	p.Hooks = append(p.Hooks, hook)
	return m.persist()
}

// ContextFile is one entry of the ordered, deduplicated context payload.
type ContextFile struct {
	Path    string
	Content string
}

// GetContextFiles expands the global profile's and the active profile's
// globs against fs, reads each matched file up to maxBytes, runs each
// profile's hooks as subprocesses (their stdout appended as synthetic
// entries), and returns the combined list with duplicate paths removed.
// A single file or hook failure is logged via m.logger and skipped rather
// than aborting the whole call.
func (m *Manager) GetContextFiles(ctx context.Context) ([]ContextFile, error) {
	m.mu.RLock()
	global := m.profiles[GlobalProfileName]
	active := m.profiles[m.active]
	m.mu.RUnlock()

	var files []ContextFile
	seen := make(map[string]bool)

	for _, p := range []*Profile{global, active} {
		if p == nil {
			continue
		}
		for _, glob := range p.Paths {
			matches, err := m.expandGlob(ctx, glob)
			if err != nil {
				m.logger(glob, err)
				continue
			}
			for _, path := range matches {
				if seen[path] {
					continue
				}
				content, err := m.readCapped(ctx, path)
				if err != nil {
					m.logger(path, err)
					continue
				}
				seen[path] = true
				files = append(files, ContextFile{Path: path, Content: content})
			}
		}
		for _, h := range p.Hooks {
			out, err := runHook(ctx, h)
			if err != nil {
				m.logger(h.Name, err)
				continue
			}
			key := "hook:" + h.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			files = append(files, ContextFile{Path: key, Content: out})
		}
	}
	return files, nil
}

func (m *Manager) expandGlob(ctx context.Context, glob string) ([]string, error) {
	base := nonGlobPrefix(glob)
	var matches []string
	err := m.fs.Walk(ctx, base, func(ctx context.Context, baseURL string, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info == nil || info.IsDir() {
			return true, nil
		}
		var p string
		if parent == "" {
			p = url.Join(baseURL, info.Name())
		} else {
			p = url.Join(baseURL, parent, info.Name())
		}
		if globMatch(glob, p) || globMatch(glob, filepath.Base(p)) {
			matches = append(matches, p)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// nonGlobPrefix returns the directory portion of glob preceding its first
// wildcard segment, so Walk only has to scan a relevant subtree.
func nonGlobPrefix(glob string) string {
	segs := strings.Split(glob, "/")
	var base []string
	for _, s := range segs {
		if strings.ContainsAny(s, "*?[") {
			break
		}
		base = append(base, s)
	}
	if len(base) == 0 {
		return "."
	}
	return strings.Join(base, "/")
}

func (m *Manager) readCapped(ctx context.Context, path string) (string, error) {
	data, err := m.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return "", err
	}
	if int64(len(data)) > m.maxBytes {
		data = data[:m.maxBytes]
	}
	return string(data), nil
}

func runHook(ctx context.Context, h HookSpec) (string, error) {
	cmd := exec.CommandContext(ctx, h.Cmd, h.Args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("contextmgr: hook %s: %w", h.Name, err)
	}
	return stdout.String(), nil
}
