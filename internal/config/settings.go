// Package config is the Settings store (§4.15): a thin, well-known-key
// wrapper over internal/kvstore holding everything qterm needs to
// remember between invocations — trusted tool names, the active context
// profile, the log level, compaction tuning, and where the MCP Server
// Config file lives.
package config

import (
	"encoding/json"

	"github.com/viant/qterm/internal/kvstore"
)

const (
	keyTrustedTools    = "settings.trustedTools"
	keyActiveProfile   = "settings.activeProfile"
	keyLogLevel        = "settings.logLevel"
	keyCompactKeepN    = "settings.chat.compactKeepTurns"
	keyMCPConfigPath   = "settings.mcpConfigPath"
	keyInlineEnabled   = "settings.inline.enabled"
	keyInlineCustom    = "settings.inline.customizations"
)

// DefaultCompactKeepTurns is how many trailing turns survive automatic
// compaction (plus the original first user message), absent an override.
const DefaultCompactKeepTurns = 2

// Settings wraps a kvstore.Interface with typed accessors for every
// well-known key qterm persists across runs.
type Settings struct {
	store kvstore.Interface
}

// New wraps store as a Settings accessor.
func New(store kvstore.Interface) *Settings {
	return &Settings{store: store}
}

// TrustedTools returns the persisted set of auto-dispatch tool names, empty
// if never set. `/tools trust` changes only the in-memory policy and does
// not write this set.
func (s *Settings) TrustedTools() ([]string, error) {
	var names []string
	if _, err := s.store.GetTyped(keyTrustedTools, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// SetTrustedTools persists the full trusted-tool set.
func (s *Settings) SetTrustedTools(names []string) error {
	return s.store.Set(keyTrustedTools, names)
}

// ActiveProfile returns the saved active context profile name, or ok=false
// if never set (callers fall back to contextmgr.DefaultProfileName).
func (s *Settings) ActiveProfile() (string, bool, error) {
	var name string
	ok, err := s.store.GetTyped(keyActiveProfile, &name)
	return name, ok, err
}

// SetActiveProfile persists the active context profile name.
func (s *Settings) SetActiveProfile(name string) error {
	return s.store.Set(keyActiveProfile, name)
}

// LogLevel returns the saved Q_LOG_LEVEL override, or ok=false if unset.
func (s *Settings) LogLevel() (string, bool, error) {
	var level string
	ok, err := s.store.GetTyped(keyLogLevel, &level)
	return level, ok, err
}

// SetLogLevel persists a log level override.
func (s *Settings) SetLogLevel(level string) error {
	return s.store.Set(keyLogLevel, level)
}

// CompactKeepTurns returns the configured automatic-compaction retention
// window, defaulting to DefaultCompactKeepTurns if never set.
func (s *Settings) CompactKeepTurns() (int, error) {
	var n int
	ok, err := s.store.GetTyped(keyCompactKeepN, &n)
	if err != nil {
		return 0, err
	}
	if !ok || n <= 0 {
		return DefaultCompactKeepTurns, nil
	}
	return n, nil
}

// SetCompactKeepTurns persists the automatic-compaction retention window.
func (s *Settings) SetCompactKeepTurns(n int) error {
	return s.store.Set(keyCompactKeepN, n)
}

// MCPConfigPath returns the configured MCP Server Config file path, or
// ok=false if never set (callers fall back to a default under the config
// directory).
func (s *Settings) MCPConfigPath() (string, bool, error) {
	var path string
	ok, err := s.store.GetTyped(keyMCPConfigPath, &path)
	return path, ok, err
}

// SetMCPConfigPath persists the MCP Server Config file path.
func (s *Settings) SetMCPConfigPath(path string) error {
	return s.store.Set(keyMCPConfigPath, path)
}

// InlineEnabled reports whether shell inline-suggestion mode is turned on.
func (s *Settings) InlineEnabled() (bool, error) {
	var enabled bool
	if _, err := s.store.GetTyped(keyInlineEnabled, &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// SetInlineEnabled toggles shell inline-suggestion mode.
func (s *Settings) SetInlineEnabled(enabled bool) error {
	return s.store.Set(keyInlineEnabled, enabled)
}

// InlineCustomizations returns the free-form per-shell inline
// customization text set by `inline set-customization`.
func (s *Settings) InlineCustomizations() (map[string]string, error) {
	var m map[string]string
	if _, err := s.store.GetTyped(keyInlineCustom, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// SetInlineCustomization sets the customization text for one shell kind.
func (s *Settings) SetInlineCustomization(shellKind, text string) error {
	m, err := s.InlineCustomizations()
	if err != nil {
		return err
	}
	if m == nil {
		m = make(map[string]string)
	}
	m[shellKind] = text
	return s.store.Set(keyInlineCustom, m)
}

// Get returns the raw value for an arbitrary settings key, used by the
// generic `settings <key>` CLI form.
func (s *Settings) Get(key string) (string, bool, error) {
	var v any
	ok, err := s.store.GetTyped(key, &v)
	if err != nil || !ok {
		return "", ok, err
	}
	return toDisplayString(v), true, nil
}

// Set stores a raw string value for an arbitrary settings key, used by
// the generic `settings <key> <value>` CLI form.
func (s *Settings) Set(key, value string) error {
	return s.store.Set(key, value)
}

func toDisplayString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
