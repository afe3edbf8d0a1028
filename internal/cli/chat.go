package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/viant/afs"

	"github.com/viant/qterm/internal/chatloop"
	"github.com/viant/qterm/internal/config"
	"github.com/viant/qterm/internal/contextmgr"
	"github.com/viant/qterm/internal/conversation"
	"github.com/viant/qterm/internal/kvstore"
	"github.com/viant/qterm/internal/llm"
	"github.com/viant/qterm/internal/log"
	"github.com/viant/qterm/internal/session"
	"github.com/viant/qterm/internal/tokenacct"
	"github.com/viant/qterm/internal/toolmanager"
	"github.com/viant/qterm/internal/tools"
)

// ChatCmd enters the Tool Loop (§4.6). A real vendor StreamClient is out of
// scope (see DESIGN.md); --no-interactive plays back a fixed scripted reply
// so the command has a deterministic, testable exit path.
type ChatCmd struct {
	Prompt        string `positional-arg-name:"prompt" description:"initial prompt"`
	NoInteractive bool   `long:"no-interactive" description:"run one turn against a scripted reply and exit"`
	New           bool   `long:"new" description:"start a fresh conversation, ignoring any saved session"`
	TrustAllTools bool   `long:"trust-all-tools" description:"dispatch every tool without asking"`
	TrustTools    string `long:"trust-tools" description:"comma-separated list of tool names to trust"`
	Profile       string `long:"profile" description:"context profile to activate"`
}

func (c *ChatCmd) Execute(_ []string) error {
	store, err := kvstore.Open(config.SettingsPath())
	if err != nil {
		return fmt.Errorf("chat: open settings store: %w", err)
	}
	settings := config.New(store)

	conv := conversation.New()
	ctx := context.Background()

	mgr, err := buildToolManager(settings)
	if err != nil {
		return fmt.Errorf("chat: build tool manager: %w", err)
	}
	if c.TrustAllTools {
		mgr.Policy.TrustAll()
	}
	for _, name := range splitCSV(c.TrustTools) {
		mgr.Policy.Set(name, toolmanager.TrustAuto)
	}

	ctxMgr, err := contextmgr.New(afs.New(), store, func(path string, err error) {
		log.Default.Publish(log.Event{EventType: log.ToolOutput, Payload: fmt.Sprintf("context: %s: %v", path, err)})
	})
	if err != nil {
		return fmt.Errorf("chat: build context manager: %w", err)
	}
	if c.Profile != "" {
		_ = ctxMgr.Create(c.Profile)
		if err := ctxMgr.SetActive(c.Profile); err != nil {
			return fmt.Errorf("chat: activate profile %q: %w", c.Profile, err)
		}
	}

	mcpPath, _, err := settings.MCPConfigPath()
	if err != nil {
		return fmt.Errorf("chat: read mcp config path: %w", err)
	}
	if mcpPath == "" {
		mcpPath = config.DefaultMCPConfigPath()
	}
	supervisor, mcpCfg := newSupervisor(mcpPath)
	defer supervisor.Close()
	chatloop.AttachMCPServers(ctx, mgr, supervisor, mcpCfg)

	keepTurns, err := settings.CompactKeepTurns()
	if err != nil {
		return fmt.Errorf("chat: read compact-keep-turns: %w", err)
	}

	client := defaultStreamClient(c.NoInteractive, c.Prompt)

	reg := session.NewRegistry()
	sessionID, listener, err := startSessionListener(reg)
	if err != nil {
		return fmt.Errorf("chat: start session listener: %w", err)
	}
	defer listener.Close()
	os.Setenv("QTERM_SESSION_ID", sessionID)

	loop := chatloop.New(conv, client, mgr, tokenacct.New(tokenacct.DefaultProfile), os.Stdout)
	loop.TerminalType = os.Getenv("TERM")
	loop.Context = ctxMgr
	loop.Supervisor = supervisor
	loop.MCPConfigPath = mcpPath
	loop.CompactKeepTurns = keepTurns
	loop.Confirm = chatloop.TerminalConfirmer(os.Stdout, stdinReader(), mgr.Policy)

	if c.NoInteractive {
		return loop.Run(ctx, linesFromSingle(c.Prompt))
	}
	return loop.Run(ctx, stdinReader())
}

// defaultStreamClient returns the scripted FakeClient used until a real
// vendor StreamClient is wired (§4.11 places that provider out of scope).
func defaultStreamClient(noInteractive bool, prompt string) llm.StreamClient {
	reply := "ok"
	if noInteractive && prompt != "" {
		reply = fmt.Sprintf("received: %s", prompt)
	}
	return llm.NewFakeClient(llm.ScriptedTurn{Text: reply})
}

func buildToolManager(settings *config.Settings) (*toolmanager.Manager, error) {
	registry := tools.Registry(afs.New())
	builtins := make(map[string]toolmanager.BuiltinHandler, len(registry))
	specs := make([]toolmanager.ToolSpec, 0, len(registry))
	for name, handler := range registry {
		h := handler
		builtins[name] = func(ctx context.Context, toolUseID string, args json.RawMessage) ([]conversation.ContentPart, error) {
			return h(ctx, toolUseID, args)
		}
		specs = append(specs, toolmanager.ToolSpec{Name: name, Description: tools.Description(name), InputSchema: tools.Schema(name)})
	}
	mgr, err := toolmanager.New(builtins, specs, nil, nil)
	if err != nil {
		return nil, err
	}
	trusted, err := settings.TrustedTools()
	if err != nil {
		return nil, err
	}
	for _, name := range trusted {
		mgr.Policy.Set(name, toolmanager.TrustAuto)
	}
	return mgr, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stdinReader() chatloop.LineReader {
	scanner := bufio.NewScanner(os.Stdin)
	return func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return scanner.Text(), true
	}
}

func linesFromSingle(line string) chatloop.LineReader {
	sent := false
	return func() (string, bool) {
		if sent {
			return "", false
		}
		sent = true
		return line, true
	}
}
