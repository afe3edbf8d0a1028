package cli

import (
	"fmt"

	"github.com/viant/qterm/internal/config"
	"github.com/viant/qterm/internal/kvstore"
)

// InlineCmd toggles and reports the inline-suggestion feature (§6).
type InlineCmd struct {
	Args struct {
		Action string   `positional-arg-name:"action" description:"enable|disable|status|set-customization|show-customizations"`
		Rest   []string `positional-arg-name:"rest"`
	} `positional-args:"yes"`
}

func (c *InlineCmd) Execute(_ []string) error {
	store, err := kvstore.Open(config.SettingsPath())
	if err != nil {
		return fmt.Errorf("inline: open store: %w", err)
	}
	settings := config.New(store)

	switch c.Args.Action {
	case "enable":
		return settings.SetInlineEnabled(true)
	case "disable":
		return settings.SetInlineEnabled(false)
	case "status":
		enabled, err := settings.InlineEnabled()
		if err != nil {
			return err
		}
		if enabled {
			fmt.Println("enabled")
		} else {
			fmt.Println("disabled")
		}
		return nil
	case "set-customization":
		if len(c.Args.Rest) < 2 {
			return fmt.Errorf("inline: set-customization requires <shell> <text>")
		}
		return settings.SetInlineCustomization(c.Args.Rest[0], c.Args.Rest[1])
	case "show-customizations":
		customs, err := settings.InlineCustomizations()
		if err != nil {
			return err
		}
		for shell, text := range customs {
			fmt.Printf("%s: %s\n", shell, text)
		}
		return nil
	default:
		return fmt.Errorf("inline: unknown action %q", c.Args.Action)
	}
}
