package chatloop

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/viant/qterm/internal/contextmgr"
	"github.com/viant/qterm/internal/mcpsupervisor"
	"github.com/viant/qterm/internal/toolmanager"
)

// handleSlash dispatches one `/`-prefixed line to its handler. Unknown
// commands and argument errors print a one-line message and leave the
// loop state unchanged.
func (l *Loop) handleSlash(ctx context.Context, line string) {
	fields := strings.Fields(line)
	cmd := strings.TrimPrefix(fields[0], "/")
	args := fields[1:]

	switch cmd {
	case "quit":
		l.quit = true
	case "clear":
		l.Conv.Messages = nil
	case "compact":
		keep := l.CompactKeepTurns
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
				keep = n
			}
		}
		l.compact(ctx, keep)
	case "tools":
		l.cmdTools(args)
	case "usage":
		l.cmdUsage()
	case "profile":
		l.cmdProfile(args)
	case "context":
		l.cmdContext(ctx, args)
	case "mcp":
		l.cmdMCP(ctx, args)
	case "model":
		l.printf("model: %s\n", l.ModelName)
	case "help":
		l.printf("commands: /quit /clear /profile /context /compact /tools /usage /mcp /model /help\n")
	default:
		l.printf("unknown command: /%s\n", cmd)
	}
}

func (l *Loop) cmdTools(args []string) {
	if l.Tools == nil {
		l.printf("tools: not available\n")
		return
	}
	if len(args) == 0 {
		l.printf("usage: /tools {list|trust|untrust} [name]\n")
		return
	}
	switch args[0] {
	case "list":
		specs := l.Tools.Catalogue()
		names := make([]string, 0, len(specs))
		for _, s := range specs {
			names = append(names, s.Name)
		}
		sort.Strings(names)
		for _, n := range names {
			l.printf("%s\n", n)
		}
	case "trust":
		if len(args) < 2 {
			l.printf("usage: /tools trust <name>\n")
			return
		}
		l.Tools.Policy.Set(args[1], toolmanager.TrustAuto)
	case "untrust":
		if len(args) < 2 {
			l.printf("usage: /tools untrust <name>\n")
			return
		}
		l.Tools.Policy.Set(args[1], toolmanager.TrustAsk)
	default:
		l.printf("usage: /tools {list|trust|untrust} [name]\n")
	}
}

func (l *Loop) cmdUsage() {
	usage := l.Accountant.Usage(l.conversationChars())
	l.printf("tokens: ~%d / %d (%.1f%% utilized, over high-water mark: %v)\n",
		usage.EstimatedTokens, usage.ContextWindow, usage.Utilization*100, usage.OverHighWater)
}

func (l *Loop) cmdProfile(args []string) {
	if l.Context == nil {
		l.printf("profile: context manager not available\n")
		return
	}
	if len(args) == 0 {
		l.printf("usage: /profile {list|create|delete|set|rename} [name]\n")
		return
	}
	switch args[0] {
	case "list":
		for _, name := range l.Context.List() {
			mark := "  "
			if name == l.Context.Active() {
				mark = "* "
			}
			l.printf("%s%s\n", mark, name)
		}
	case "create":
		if len(args) < 2 {
			l.printf("usage: /profile create <name>\n")
			return
		}
		if err := l.Context.Create(args[1]); err != nil {
			l.printf("profile: %v\n", err)
		}
	case "delete":
		if len(args) < 2 {
			l.printf("usage: /profile delete <name>\n")
			return
		}
		if err := l.Context.Delete(args[1]); err != nil {
			l.printf("profile: %v\n", err)
		}
	case "set":
		if len(args) < 2 {
			l.printf("usage: /profile set <name>\n")
			return
		}
		if err := l.Context.SetActive(args[1]); err != nil {
			l.printf("profile: %v\n", err)
		}
	case "rename":
		l.printf("profile: rename is not supported; create the new name and delete the old one\n")
	default:
		l.printf("usage: /profile {list|create|delete|set|rename} [name]\n")
	}
}

func (l *Loop) cmdContext(ctx context.Context, args []string) {
	if l.Context == nil {
		l.printf("context: context manager not available\n")
		return
	}
	if len(args) == 0 {
		l.printf("usage: /context {add|rm|show|clear} [glob]\n")
		return
	}
	switch args[0] {
	case "add":
		if len(args) < 2 {
			l.printf("usage: /context add <glob>\n")
			return
		}
		if err := l.Context.AddPath(l.Context.Active(), args[1]); err != nil {
			l.printf("context: %v\n", err)
		}
	case "show":
		files, err := l.Context.GetContextFiles(ctx)
		if err != nil {
			l.printf("context: %v\n", err)
			return
		}
		for _, f := range files {
			l.printf("%s (%d bytes)\n", f.Path, len(f.Content))
		}
	case "rm", "clear":
		l.printf("context: %s is not yet supported; use /profile delete and recreate\n", args[0])
	default:
		l.printf("usage: /context {add|rm|show|clear} [glob]\n")
	}
}

func (l *Loop) cmdMCP(ctx context.Context, args []string) {
	if l.Supervisor == nil {
		l.printf("mcp: supervisor not available\n")
		return
	}
	if len(args) == 0 {
		l.printf("usage: /mcp {status|list|add|remove|import}\n")
		return
	}
	switch args[0] {
	case "status":
		for _, st := range l.Supervisor.StatusAll() {
			l.printf("%s connected=%v lastUsed=%s\n", st.Name, st.Connected, st.LastUsed.Format("15:04:05"))
		}
	case "list":
		cf, err := mcpsupervisor.LoadConfigFile(l.MCPConfigPath)
		if err != nil {
			l.printf("mcp: %v\n", err)
			return
		}
		for _, sc := range cf.Servers {
			l.printf("%s: %s %s\n", sc.Name, sc.Command, strings.Join(sc.Args, " "))
		}
	case "add":
		if len(args) < 3 {
			l.printf("usage: /mcp add <name> <command> [args...]\n")
			return
		}
		cf, err := mcpsupervisor.LoadConfigFile(l.MCPConfigPath)
		if err != nil {
			l.printf("mcp: %v\n", err)
			return
		}
		cf.Add(mcpsupervisor.ServerConfig{Name: args[1], Command: args[2], Args: args[3:]})
		if err := mcpsupervisor.SaveConfigFile(l.MCPConfigPath, cf); err != nil {
			l.printf("mcp: %v\n", err)
			return
		}
		l.Supervisor.Reconcile(cf)
		AttachMCPServers(ctx, l.Tools, l.Supervisor, cf)
	case "remove":
		if len(args) < 2 {
			l.printf("usage: /mcp remove <name>\n")
			return
		}
		cf, err := mcpsupervisor.LoadConfigFile(l.MCPConfigPath)
		if err != nil {
			l.printf("mcp: %v\n", err)
			return
		}
		cf.Remove(args[1])
		if err := mcpsupervisor.SaveConfigFile(l.MCPConfigPath, cf); err != nil {
			l.printf("mcp: %v\n", err)
			return
		}
		l.Supervisor.Reconcile(cf)
		AttachMCPServers(ctx, l.Tools, l.Supervisor, cf)
	case "import":
		if len(args) < 2 {
			l.printf("usage: /mcp import <path>\n")
			return
		}
		imported, err := mcpsupervisor.LoadConfigFile(args[1])
		if err != nil {
			l.printf("mcp: %v\n", err)
			return
		}
		if err := mcpsupervisor.SaveConfigFile(l.MCPConfigPath, imported); err != nil {
			l.printf("mcp: %v\n", err)
			return
		}
		l.Supervisor.Reconcile(imported)
		AttachMCPServers(ctx, l.Tools, l.Supervisor, imported)
	default:
		l.printf("usage: /mcp {status|list|add|remove|import}\n")
	}
}
