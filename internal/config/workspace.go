package config

import (
	"os"
	"path/filepath"
	"sync"
)

// envHome overrides the qterm home directory, mirroring the teacher's
// AGENTLY_WORKSPACE env var.
const envHome = "QTERM_HOME"

const defaultHomeDirName = ".qterm"

var (
	homeMu     sync.Mutex
	cachedHome string
)

// Home returns the absolute path to qterm's per-user state directory,
// creating it if absent. Lookup order: $QTERM_HOME, then
// $HOME/.qterm. The result is cached for the process lifetime except
// when $QTERM_HOME changes, mirroring the teacher's workspace.Root
// env-recheck behavior (useful across tests).
func Home() string {
	homeMu.Lock()
	defer homeMu.Unlock()

	if env := os.Getenv(envHome); env != "" {
		abs, _ := filepath.Abs(env)
		if abs != cachedHome {
			cachedHome = abs
			_ = os.MkdirAll(cachedHome, 0o700)
		}
		return cachedHome
	}
	if cachedHome != "" {
		return cachedHome
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home, _ = os.Getwd()
	}
	cachedHome = filepath.Join(home, defaultHomeDirName)
	_ = os.MkdirAll(cachedHome, 0o700)
	return cachedHome
}

// SettingsPath is the default kvstore document path under Home().
func SettingsPath() string {
	return filepath.Join(Home(), "settings.json")
}

// DefaultMCPConfigPath is the default MCP Server Config file path under
// Home(), used when Settings.MCPConfigPath was never overridden.
func DefaultMCPConfigPath() string {
	return filepath.Join(Home(), "mcp.yaml")
}

// ResetForTest clears the cached home directory so tests can point
// QTERM_HOME elsewhere between cases.
func ResetForTest() {
	homeMu.Lock()
	defer homeMu.Unlock()
	cachedHome = ""
}
