package mcpsupervisor

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ServerConfig is the MCP Server Config (§3): the on-disk description of
// one MCP server the supervisor can spawn. Name is not part of the
// marshaled entry itself — it is the key under "mcpServers" (§6).
type ServerConfig struct {
	Name              string            `yaml:"-" json:"-"`
	Command           string            `yaml:"command" json:"command"`
	Args              []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Env               map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	TimeoutMs         int               `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	StartupInitParams map[string]any    `yaml:"startupInitParams,omitempty" json:"startupInitParams,omitempty"`
}

// ConfigFile is the on-disk document `/mcp add|remove|import` mutate,
// shaped `{"mcpServers": {"<name>": {...}}}` per §6.
type ConfigFile struct {
	Servers []ServerConfig `yaml:"-" json:"-"`
}

type configFileWire struct {
	MCPServers map[string]ServerConfig `yaml:"mcpServers" json:"mcpServers"`
}

func (cf *ConfigFile) toWire() configFileWire {
	w := configFileWire{MCPServers: make(map[string]ServerConfig, len(cf.Servers))}
	for _, sc := range cf.Servers {
		w.MCPServers[sc.Name] = sc
	}
	return w
}

func (cf *ConfigFile) fromWire(w configFileWire) {
	names := make([]string, 0, len(w.MCPServers))
	for name := range w.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)
	cf.Servers = cf.Servers[:0]
	for _, name := range names {
		sc := w.MCPServers[name]
		sc.Name = name
		cf.Servers = append(cf.Servers, sc)
	}
}

// LoadConfigFile reads and parses path as YAML (which also accepts plain
// JSON, a valid YAML subset). A missing file yields an empty ConfigFile
// rather than an error, so a fresh install has nothing to reconcile
// against.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ConfigFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mcpsupervisor: read %s: %w", path, err)
	}
	var w configFileWire
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("mcpsupervisor: parse %s: %w", path, err)
	}
	cf := &ConfigFile{}
	cf.fromWire(w)
	return cf, nil
}

// SaveConfigFile writes cf to path as YAML, user-only permissions.
func SaveConfigFile(path string, cf *ConfigFile) error {
	data, err := yaml.Marshal(cf.toWire())
	if err != nil {
		return fmt.Errorf("mcpsupervisor: marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Add appends or replaces (by name) a server entry.
func (cf *ConfigFile) Add(sc ServerConfig) {
	for i, existing := range cf.Servers {
		if existing.Name == sc.Name {
			cf.Servers[i] = sc
			return
		}
	}
	cf.Servers = append(cf.Servers, sc)
}

// Remove deletes the named server entry, a no-op if absent.
func (cf *ConfigFile) Remove(name string) {
	out := cf.Servers[:0]
	for _, sc := range cf.Servers {
		if sc.Name != name {
			out = append(out, sc)
		}
	}
	cf.Servers = out
}

// Get returns the named server entry, or ok=false.
func (cf *ConfigFile) Get(name string) (ServerConfig, bool) {
	for _, sc := range cf.Servers {
		if sc.Name == name {
			return sc, true
		}
	}
	return ServerConfig{}, false
}
