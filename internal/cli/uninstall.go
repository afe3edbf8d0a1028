package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/viant/qterm/internal/config"
)

// UninstallCmd removes the workspace state directory (§6). With
// --no-confirm it proceeds without prompting; otherwise it asks once on
// stdin/stdout.
type UninstallCmd struct {
	NoConfirm bool `long:"no-confirm" description:"do not prompt before removing state"`
}

func (c *UninstallCmd) Execute(_ []string) error {
	home := config.Home()
	if !c.NoConfirm {
		fmt.Printf("remove %s and all settings? [y/N] ", home)
		reader := bufio.NewScanner(os.Stdin)
		if !reader.Scan() || (reader.Text() != "y" && reader.Text() != "Y") {
			fmt.Println("uninstall: aborted")
			return nil
		}
	}
	if err := os.RemoveAll(home); err != nil {
		return fmt.Errorf("uninstall: %w", err)
	}
	fmt.Println("uninstall: done")
	return nil
}
