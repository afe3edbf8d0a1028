// Package toolmanager builds the namespaced catalogue (built-in tools
// plus every connected MCP server's tools, prefixed per pkg/mcpname) and
// dispatches tool-use blocks against it (§4.5), enforcing JSON-Schema
// argument validation and per-tool trust policy before a handler runs.
package toolmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/qterm/internal/conversation"
	"github.com/viant/qterm/pkg/mcpname"
)

// ErrUnknownTool is returned for a tool-use naming neither a built-in nor
// a namespaced MCP tool.
var ErrUnknownTool = fmt.Errorf("toolmanager: unknown tool")

// ErrRejectedByUser marks a tool-use the trust policy or an interactive
// prompt refused.
var ErrRejectedByUser = fmt.Errorf("toolmanager: rejected by user")

// MCPCaller is the slice of mcpclient.Client a Manager depends on, so
// tests can substitute a fake without spawning a server.
type MCPCaller interface {
	CallTool(ctx context.Context, name string, arguments map[string]any) (*schema.CallToolResult, error)
}

// BuiltinHandler executes a built-in tool.
type BuiltinHandler func(ctx context.Context, toolUseID string, args json.RawMessage) ([]conversation.ContentPart, error)

// Manager owns the merged catalogue and dispatch table.
type Manager struct {
	builtins map[string]BuiltinHandler
	servers  map[string]MCPCaller
	specs    map[string]ToolSpec
	schemas  *schemaCache
	Policy   *Policy
}

// New builds a Manager from the built-in handler table and zero or more
// connected MCP servers. Each server's tools are namespaced
// `<server>⟐<tool>` (collisions within one server are rejected; across
// servers the namespace itself prevents them).
func New(builtins map[string]BuiltinHandler, builtinSpecs []ToolSpec, servers map[string]MCPCaller, serverCatalogues map[string][]schema.Tool) (*Manager, error) {
	m := &Manager{
		builtins: builtins,
		servers:  servers,
		specs:    make(map[string]ToolSpec, len(builtinSpecs)),
		schemas:  newSchemaCache(),
		Policy:   NewPolicy(),
	}
	for _, s := range builtinSpecs {
		if _, dup := m.specs[s.Name]; dup {
			return nil, fmt.Errorf("toolmanager: duplicate built-in tool name %q", s.Name)
		}
		m.specs[s.Name] = s
	}
	for server, tools := range serverCatalogues {
		seen := make(map[string]bool, len(tools))
		for _, t := range tools {
			if !mcpname.Valid(server, t.Name) {
				return nil, fmt.Errorf("toolmanager: server %q tool %q contains the namespace delimiter %q", server, t.Name, mcpname.Delimiter)
			}
			if seen[t.Name] {
				return nil, fmt.Errorf("toolmanager: duplicate tool name %q on server %q", t.Name, server)
			}
			seen[t.Name] = true
			ns := mcpname.New(server, t.Name)
			schemaBytes, _ := json.Marshal(t.InputSchema)
			m.specs[ns.String()] = ToolSpec{Name: ns.String(), Description: deref(t.Description), InputSchema: schemaBytes}
		}
	}
	return m, nil
}

// AddServer registers name's live caller and catalogue, namespacing each
// tool and replacing any prior entry under the same server name. It
// rejects a catalogue containing a tool name that would make the
// namespaced form ambiguous to split back apart.
func (m *Manager) AddServer(name string, caller MCPCaller, catalogue []schema.Tool) error {
	specs := make(map[string]ToolSpec, len(catalogue))
	seen := make(map[string]bool, len(catalogue))
	for _, t := range catalogue {
		if !mcpname.Valid(name, t.Name) {
			return fmt.Errorf("toolmanager: server %q tool %q contains the namespace delimiter %q", name, t.Name, mcpname.Delimiter)
		}
		if seen[t.Name] {
			return fmt.Errorf("toolmanager: duplicate tool name %q on server %q", t.Name, name)
		}
		seen[t.Name] = true
		ns := mcpname.New(name, t.Name)
		schemaBytes, _ := json.Marshal(t.InputSchema)
		specs[ns.String()] = ToolSpec{Name: ns.String(), Description: deref(t.Description), InputSchema: schemaBytes}
	}

	m.RemoveServer(name)
	if m.servers == nil {
		m.servers = make(map[string]MCPCaller)
	}
	m.servers[name] = caller
	for k, v := range specs {
		m.specs[k] = v
	}
	return nil
}

// RemoveServer drops name's caller and every tool it namespaced, a no-op
// if name was never attached.
func (m *Manager) RemoveServer(name string) {
	delete(m.servers, name)
	prefix := name + mcpname.Delimiter
	for k := range m.specs {
		if strings.HasPrefix(k, prefix) {
			delete(m.specs, k)
		}
	}
}

// ServerNames lists every MCP server currently attached to the Manager.
func (m *Manager) ServerNames() []string {
	names := make([]string, 0, len(m.servers))
	for name := range m.servers {
		names = append(names, name)
	}
	return names
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Catalogue returns every dispatchable tool spec.
func (m *Manager) Catalogue() []ToolSpec {
	out := make([]ToolSpec, 0, len(m.specs))
	for _, s := range m.specs {
		out = append(out, s)
	}
	return out
}

// Confirmer prompts the user for an untrusted tool-use and reports
// whether they approved it.
type Confirmer func(toolUseID, name string, args json.RawMessage) bool

// Dispatch resolves and runs a single tool-use block, returning the
// Tool Result Block that answers it. It never returns a Go error for a
// tool-level failure — those are encoded as Status:"error" content,
// matching the spec's "error result, never an exception" contract.
func (m *Manager) Dispatch(ctx context.Context, use conversation.ToolUseBlock, confirm Confirmer) conversation.ToolResultBlock {
	spec, ok := m.specs[use.Name]
	if !ok {
		return errResult(use.ID, ErrUnknownTool.Error()+": "+use.Name)
	}

	if err := m.schemas.Validate(spec, use.ID, use.Args); err != nil {
		return errResult(use.ID, err.Error())
	}

	switch m.Policy.Mode(use.Name) {
	case TrustDeny:
		return errResult(use.ID, ErrRejectedByUser.Error()+": tool is denied by policy")
	case TrustAsk:
		if confirm != nil && !confirm(use.ID, use.Name, use.Args) {
			return errResult(use.ID, ErrRejectedByUser.Error())
		}
	case TrustAuto:
		// dispatch without prompting
	}

	content, err := m.invoke(ctx, use)
	if err != nil {
		return errResult(use.ID, err.Error())
	}
	return conversation.ToolResultBlock{ToolUseID: use.ID, Status: conversation.StatusOK, Content: content}
}

func (m *Manager) invoke(ctx context.Context, use conversation.ToolUseBlock) ([]conversation.ContentPart, error) {
	if handler, ok := m.builtins[use.Name]; ok {
		return handler(ctx, use.ID, use.Args)
	}

	server, tool, ok := mcpname.Split(use.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, use.Name)
	}
	cli, ok := m.servers[server]
	if !ok {
		return nil, fmt.Errorf("%w: server %q not connected", ErrUnknownTool, server)
	}

	var args map[string]any
	if len(use.Args) > 0 {
		if err := json.Unmarshal(use.Args, &args); err != nil {
			return nil, fmt.Errorf("unmarshal arguments for %s: %w", use.Name, err)
		}
	}
	result, err := cli.CallTool(ctx, tool, args)
	if err != nil {
		return nil, err
	}
	return fromMCPContent(result), nil
}

func fromMCPContent(result *schema.CallToolResult) []conversation.ContentPart {
	if result == nil {
		return nil
	}
	parts := make([]conversation.ContentPart, 0, len(result.Content))
	for _, c := range result.Content {
		if c.Text != "" {
			parts = append(parts, conversation.TextContent(c.Text))
			continue
		}
		b, _ := json.Marshal(c)
		parts = append(parts, conversation.JSONContent(b))
	}
	return parts
}

func errResult(toolUseID, msg string) conversation.ToolResultBlock {
	return conversation.ToolResultBlock{
		ToolUseID: toolUseID,
		Status:    conversation.StatusError,
		Content:   []conversation.ContentPart{conversation.TextContent(msg)},
	}
}
