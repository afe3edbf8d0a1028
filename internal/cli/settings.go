package cli

import (
	"encoding/json"
	"fmt"

	"github.com/viant/qterm/internal/config"
	"github.com/viant/qterm/internal/kvstore"
)

// SettingsCmd reads or writes one key in the Key-Value Store (§4.8/§6).
// With no key, it is reserved for a future "list all" mode and currently
// reports that a key is required.
type SettingsCmd struct {
	Args struct {
		Key   string `positional-arg-name:"key"`
		Value string `positional-arg-name:"value"`
	} `positional-args:"yes"`
	Delete bool   `long:"delete" description:"remove the key instead of reading/writing it"`
	Format string `long:"format" choice:"plain" choice:"json" choice:"json-pretty" default:"plain" description:"output format for a read"`
}

func (c *SettingsCmd) Execute(_ []string) error {
	store, err := kvstore.Open(config.SettingsPath())
	if err != nil {
		return fmt.Errorf("settings: open store: %w", err)
	}
	settings := config.New(store)

	if c.Args.Key == "" {
		return fmt.Errorf("settings: a key is required")
	}

	if c.Delete {
		return store.Remove(c.Args.Key)
	}

	if c.Args.Value != "" {
		return settings.Set(c.Args.Key, c.Args.Value)
	}

	value, ok, err := settings.Get(c.Args.Key)
	if err != nil {
		return fmt.Errorf("settings: get %q: %w", c.Args.Key, err)
	}
	if !ok {
		fmt.Println("")
		return nil
	}
	switch c.Format {
	case "json":
		raw, _ := json.Marshal(value)
		fmt.Println(string(raw))
	case "json-pretty":
		raw, _ := json.MarshalIndent(value, "", "  ")
		fmt.Println(string(raw))
	default:
		fmt.Println(value)
	}
	return nil
}
