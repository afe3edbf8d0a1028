package toolmanager

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ToolSpec is one entry of the namespaced tool catalogue: a name, its
// human-readable description, and a JSON Schema describing its arguments.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// schemaCache compiles each tool's input schema once and reuses it across
// calls, following the same compiler.AddResource/Compile/Validate
// sequence the pack's goa-ai registry service uses for payload validation.
type schemaCache struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{compiled: make(map[string]*jsonschema.Schema)}
}

// ValidationError names the offending tool and the schema violation.
type ValidationError struct {
	ToolUseID string
	Tool      string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("toolmanager: arguments for %q (tool-use %s) fail schema validation: %v", e.Tool, e.ToolUseID, e.Err)
}
func (e *ValidationError) Unwrap() error { return e.Err }

// Validate compiles (once, cached) and checks args against spec's input
// schema. An empty schema is treated as "anything goes".
func (c *schemaCache) Validate(spec ToolSpec, toolUseID string, args json.RawMessage) error {
	if len(spec.InputSchema) == 0 {
		return nil
	}
	compiled, err := c.compile(spec)
	if err != nil {
		return &ValidationError{ToolUseID: toolUseID, Tool: spec.Name, Err: err}
	}

	var doc any
	if len(args) == 0 {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, &doc); err != nil {
		return &ValidationError{ToolUseID: toolUseID, Tool: spec.Name, Err: fmt.Errorf("unmarshal arguments: %w", err)}
	}
	if err := compiled.Validate(doc); err != nil {
		return &ValidationError{ToolUseID: toolUseID, Tool: spec.Name, Err: err}
	}
	return nil
}

func (c *schemaCache) compile(spec ToolSpec) (*jsonschema.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.compiled[spec.Name]; ok {
		return s, nil
	}

	var schemaDoc any
	if err := json.Unmarshal(spec.InputSchema, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	resourceURL := "qterm://tool/" + spec.Name
	if err := compiler.AddResource(resourceURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	c.compiled[spec.Name] = compiled
	return compiled, nil
}
