package cli

import (
	"fmt"
	"os"

	"github.com/google/gops/agent"

	"github.com/viant/qterm/internal/config"
	"github.com/viant/qterm/internal/ipc"
	"github.com/viant/qterm/internal/kvstore"
)

// DoctorCmd runs a set of diagnostic checks and, with --gops, starts a gops
// diagnostics agent the way the teacher wires gops into its long-running
// service command (see DESIGN.md).
type DoctorCmd struct {
	Gops bool `long:"gops" description:"start a gops diagnostics agent for this process"`
}

func (c *DoctorCmd) Execute(_ []string) error {
	if c.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fmt.Errorf("doctor: gops agent: %w", err)
		}
		defer agent.Close()
	}

	ok := true

	home := config.Home()
	if info, err := os.Stat(home); err != nil || !info.IsDir() {
		fmt.Printf("FAIL workspace home %s is not accessible\n", home)
		ok = false
	} else {
		fmt.Printf("OK   workspace home %s\n", home)
	}

	if _, err := kvstore.Open(config.SettingsPath()); err != nil {
		fmt.Printf("FAIL settings store: %v\n", err)
		ok = false
	} else {
		fmt.Println("OK   settings store opens")
	}

	store, err := kvstore.Open(config.SettingsPath())
	if err == nil {
		settings := config.New(store)
		mcpPath, _, _ := settings.MCPConfigPath()
		if mcpPath == "" {
			mcpPath = config.DefaultMCPConfigPath()
		}
		sup, _ := newSupervisor(mcpPath)
		statuses := sup.StatusAll()
		if len(statuses) == 0 {
			fmt.Println("OK   no MCP servers configured")
		}
		for _, st := range statuses {
			if st.Connected {
				fmt.Printf("OK   mcp server %s connected\n", st.Name)
			} else {
				fmt.Printf("WARN mcp server %s not connected (lazy spawn)\n", st.Name)
			}
		}
		sup.Close()
	}

	runtimeDir := ipc.RuntimeDir()
	if info, err := os.Stat(runtimeDir); err == nil && info.IsDir() {
		fmt.Printf("OK   ipc runtime dir %s\n", runtimeDir)
	} else {
		fmt.Printf("WARN ipc runtime dir %s not yet created\n", runtimeDir)
	}

	if !ok {
		os.Exit(1)
	}
	return nil
}
