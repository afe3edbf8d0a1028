package chatloop

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/qterm/internal/conversation"
	"github.com/viant/qterm/internal/mcpsupervisor"
	"github.com/viant/qterm/internal/toolmanager"
)

type fakeMCPClient struct {
	name   string
	tools  []schema.Tool
	closed bool
}

func (f *fakeMCPClient) Name() string            { return f.name }
func (f *fakeMCPClient) Tools() []schema.Tool    { return f.tools }
func (f *fakeMCPClient) CallTool(ctx context.Context, name string, arguments map[string]any) (*schema.CallToolResult, error) {
	return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{{Type: "text", Text: "pong"}}}, nil
}
func (f *fakeMCPClient) Close() error { f.closed = true; return nil }

func TestAttachMCPServersMakesConnectedCatalogueDispatchable(t *testing.T) {
	connector := func(ctx context.Context, sc mcpsupervisor.ServerConfig) (mcpsupervisor.Client, error) {
		return &fakeMCPClient{name: sc.Name, tools: []schema.Tool{{Name: "ping"}}}, nil
	}
	sup := mcpsupervisor.New(connector, time.Hour)
	cf := &mcpsupervisor.ConfigFile{Servers: []mcpsupervisor.ServerConfig{{Name: "db", Command: "db-server"}}}
	sup.Reconcile(cf)

	mgr, err := toolmanager.New(nil, nil, nil, nil)
	require.NoError(t, err)
	mgr.Policy.TrustAll()

	AttachMCPServers(context.Background(), mgr, sup, cf)

	res := mgr.Dispatch(context.Background(), conversation.ToolUseBlock{ID: "t1", Name: "db⟐ping"}, nil)
	assert.Equal(t, conversation.StatusOK, res.Status)
}

func TestAttachMCPServersDetachesServersDroppedFromConfig(t *testing.T) {
	connector := func(ctx context.Context, sc mcpsupervisor.ServerConfig) (mcpsupervisor.Client, error) {
		return &fakeMCPClient{name: sc.Name, tools: []schema.Tool{{Name: "ping"}}}, nil
	}
	sup := mcpsupervisor.New(connector, time.Hour)
	cf := &mcpsupervisor.ConfigFile{Servers: []mcpsupervisor.ServerConfig{{Name: "db", Command: "db-server"}}}
	sup.Reconcile(cf)

	mgr, err := toolmanager.New(nil, nil, nil, nil)
	require.NoError(t, err)
	AttachMCPServers(context.Background(), mgr, sup, cf)
	require.Contains(t, mgr.ServerNames(), "db")

	cf.Remove("db")
	sup.Reconcile(cf)
	AttachMCPServers(context.Background(), mgr, sup, cf)

	assert.Empty(t, mgr.ServerNames())
}

func TestAttachMCPServersOmitsUnreachableServer(t *testing.T) {
	connector := func(ctx context.Context, sc mcpsupervisor.ServerConfig) (mcpsupervisor.Client, error) {
		return nil, assert.AnError
	}
	sup := mcpsupervisor.New(connector, time.Hour)
	cf := &mcpsupervisor.ConfigFile{Servers: []mcpsupervisor.ServerConfig{{Name: "down", Command: "missing"}}}
	sup.Reconcile(cf)

	mgr, err := toolmanager.New(nil, nil, nil, nil)
	require.NoError(t, err)
	AttachMCPServers(context.Background(), mgr, sup, cf)

	assert.Empty(t, mgr.ServerNames())
}

// TestMCPAddMakesTheNewServersToolsDispatchable exercises `/mcp add`
// end-to-end: the new server's catalogue becomes dispatchable without
// restarting the Loop.
func TestMCPAddMakesTheNewServersToolsDispatchable(t *testing.T) {
	connector := func(ctx context.Context, sc mcpsupervisor.ServerConfig) (mcpsupervisor.Client, error) {
		return &fakeMCPClient{name: sc.Name, tools: []schema.Tool{{Name: "ping"}}}, nil
	}
	sup := mcpsupervisor.New(connector, time.Hour)

	mgr, err := toolmanager.New(nil, nil, nil, nil)
	require.NoError(t, err)
	mgr.Policy.TrustAll()

	l := &Loop{Tools: mgr, Supervisor: sup, MCPConfigPath: filepath.Join(t.TempDir(), "mcp.yaml"), Out: io.Discard}
	l.handleSlash(context.Background(), "/mcp add db db-server")

	res := mgr.Dispatch(context.Background(), conversation.ToolUseBlock{ID: "t1", Name: "db⟐ping"}, nil)
	assert.Equal(t, conversation.StatusOK, res.Status)
}
