// Package mcpclient implements one configured MCP server's lifecycle:
// spawn, initialize, paginated catalogue fetch, and steady-state tool
// dispatch (§4.4), layered over internal/mcptransport's stdio JSON-RPC
// transport. Catalogue and call shapes are typed with
// github.com/viant/mcp-protocol/schema, the same library the teacher's
// internal/mcp/proxy and internal/tool/registry packages use for MCP
// wire shapes, rather than ad hoc local structs.
package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/qterm/internal/mcptransport"
)

// ErrUnavailable classifies every failure mode the spec groups as "server
// unavailable": spawn failure, handshake timeout, malformed capabilities,
// transport EOF. The Tool Manager omits the server from the catalogue for
// this session on any of these.
var ErrUnavailable = errors.New("mcpclient: server unavailable")

const protocolVersion = "2025-06-18"

// Config describes how to launch one MCP server's child process.
type Config struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string
}

// requester is the slice of mcptransport.Transport a Client depends on;
// factored out so tests can substitute an in-process fake instead of
// spawning a real child process.
type requester interface {
	Request(ctx context.Context, method string, params any) (json.RawMessage, *jsonrpc.Error, error)
	Listen(buffer int) <-chan *jsonrpc.Notification
	Close() error
}

// Client is one live connection to a configured MCP server.
type Client struct {
	name string
	tr   requester

	mu         sync.RWMutex
	tools      []schema.Tool
	prompts    []schema.Prompt
	resources  []schema.Resource
	templates  []schema.ResourceTemplate
	serverCaps *schema.ServerCapabilities
}

// Connect spawns the configured command and performs the initialize
// handshake followed by a full catalogue fetch. Any failure is wrapped in
// ErrUnavailable.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	tr, err := mcptransport.Spawn(ctx, cfg.Command, cfg.Args, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: spawn: %v", ErrUnavailable, cfg.Name, err)
	}
	return newClient(ctx, cfg.Name, tr)
}

// newClient drives the handshake and catalogue fetch over an arbitrary
// requester, real or fake.
func newClient(ctx context.Context, name string, tr requester) (*Client, error) {
	c := &Client{name: name, tr: tr}

	if err := c.initialize(ctx); err != nil {
		_ = tr.Close()
		return nil, fmt.Errorf("%w: %s: initialize: %v", ErrUnavailable, name, err)
	}
	if err := c.fetchCatalogue(ctx); err != nil {
		_ = tr.Close()
		return nil, fmt.Errorf("%w: %s: catalogue fetch: %v", ErrUnavailable, name, err)
	}
	return c, nil
}

// Name returns the configured server name.
func (c *Client) Name() string { return c.name }

func (c *Client) initialize(ctx context.Context) error {
	params := schema.InitializeRequestParams{
		ProtocolVersion: protocolVersion,
		ClientInfo:      schema.Implementation{Name: "qterm", Version: "0.1.0"},
		Capabilities:    schema.ClientCapabilities{},
	}
	raw, rpcErr, err := c.tr.Request(ctx, schema.MethodInitialize, params)
	if err != nil {
		return err
	}
	if rpcErr != nil {
		return fmt.Errorf("initialize rejected: %s", rpcErr.Message)
	}
	var result schema.InitializeResult
	if err := unmarshalInto(raw, &result); err != nil {
		return fmt.Errorf("malformed initialize result: %w", err)
	}
	c.mu.Lock()
	c.serverCaps = &result.Capabilities
	c.mu.Unlock()
	return nil
}

func (c *Client) fetchCatalogue(ctx context.Context) error {
	tools, err := pageAll(ctx, c.tr, schema.MethodToolsList, func(r schema.ListToolsResult) ([]schema.Tool, *string) {
		return r.Tools, r.NextCursor
	})
	if err != nil {
		return fmt.Errorf("tools/list: %w", err)
	}
	prompts, err := pageAll(ctx, c.tr, schema.MethodPromptsList, func(r schema.ListPromptsResult) ([]schema.Prompt, *string) {
		return r.Prompts, r.NextCursor
	})
	if err != nil {
		return fmt.Errorf("prompts/list: %w", err)
	}
	resources, err := pageAll(ctx, c.tr, schema.MethodResourcesList, func(r schema.ListResourcesResult) ([]schema.Resource, *string) {
		return r.Resources, r.NextCursor
	})
	if err != nil {
		return fmt.Errorf("resources/list: %w", err)
	}
	templates, err := pageAll(ctx, c.tr, schema.MethodResourcesTemplatesList, func(r schema.ListResourceTemplatesResult) ([]schema.ResourceTemplate, *string) {
		return r.ResourceTemplates, r.NextCursor
	})
	if err != nil {
		return fmt.Errorf("resources/templates/list: %w", err)
	}

	c.mu.Lock()
	c.tools, c.prompts, c.resources, c.templates = tools, prompts, resources, templates
	c.mu.Unlock()
	return nil
}

// pageAll drives a cursor-based list method to completion, generic over
// the result envelope's element/cursor shape.
func pageAll[R any, E any](ctx context.Context, tr requester, method string, extract func(R) ([]E, *string)) ([]E, error) {
	var (
		all    []E
		cursor *string
	)
	for {
		params := map[string]any{}
		if cursor != nil {
			params["cursor"] = *cursor
		}
		raw, rpcErr, err := tr.Request(ctx, method, params)
		if err != nil {
			return nil, err
		}
		if rpcErr != nil {
			return nil, fmt.Errorf("%s: %s", method, rpcErr.Message)
		}
		var result R
		if err := unmarshalInto(raw, &result); err != nil {
			return nil, err
		}
		items, next := extract(result)
		all = append(all, items...)
		if next == nil || *next == "" {
			break
		}
		cursor = next
	}
	return all, nil
}

// Tools returns the cached tool catalogue.
func (c *Client) Tools() []schema.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]schema.Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// CallTool forwards a tools/call request and returns its result. Per
// §4.4, individual request failures surface as tool errors, not as
// ErrUnavailable — the server connection itself stays up.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (*schema.CallToolResult, error) {
	params := schema.CallToolRequestParams{Name: name, Arguments: arguments}
	raw, rpcErr, err := c.tr.Request(ctx, schema.MethodToolsCall, params)
	if err != nil {
		return nil, err
	}
	if rpcErr != nil {
		return nil, fmt.Errorf("tools/call %s: %s", name, rpcErr.Message)
	}
	var result schema.CallToolResult
	if err := unmarshalInto(raw, &result); err != nil {
		return nil, fmt.Errorf("malformed tools/call result: %w", err)
	}
	return &result, nil
}

// Notifications exposes the server's out-of-band messages (listen()).
func (c *Client) Notifications(buffer int) <-chan *jsonrpc.Notification {
	return c.tr.Listen(buffer)
}

// Close tears down the underlying transport and child process.
func (c *Client) Close() error {
	return c.tr.Close()
}

func unmarshalInto(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
