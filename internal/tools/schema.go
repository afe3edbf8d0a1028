package tools

import "encoding/json"

// schemas holds each built-in's JSON-Schema argument descriptor (§4.5),
// compiled once and reused by toolmanager's schemaCache the same way a
// namespaced MCP tool's own InputSchema is.
var schemas = map[string]string{
	"fs_read": `{
		"type": "object",
		"properties": {"path": {"type": "string", "minLength": 1}},
		"required": ["path"]
	}`,
	"fs_write": `{
		"type": "object",
		"properties": {
			"path": {"type": "string", "minLength": 1},
			"content": {"type": "string"}
		},
		"required": ["path", "content"]
	}`,
	"execute_bash": `{
		"type": "object",
		"properties": {
			"command": {"type": "string", "minLength": 1},
			"workdir": {"type": "string"},
			"timeoutMs": {"type": "integer", "minimum": 1}
		},
		"required": ["command"]
	}`,
	"use_aws": `{
		"type": "object",
		"properties": {
			"service": {"type": "string", "minLength": 1},
			"operation": {"type": "string", "minLength": 1},
			"args": {"type": "array", "items": {"type": "string"}},
			"region": {"type": "string"}
		},
		"required": ["service", "operation"]
	}`,
	"report_issue": `{
		"type": "object",
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"description": {"type": "string"}
		},
		"required": ["title"]
	}`,
	"gh_issue": `{
		"type": "object",
		"properties": {
			"repo": {"type": "string", "minLength": 1},
			"title": {"type": "string", "minLength": 1},
			"body": {"type": "string"}
		},
		"required": ["repo", "title"]
	}`,
}

// Descriptions pairs each built-in with the one-line description shown in
// `/tools list` and carried into its ToolSpec.
var descriptions = map[string]string{
	"fs_read":      "read a file's contents",
	"fs_write":     "write content to a file",
	"execute_bash": "run a shell command and capture stdout/stderr/exit code",
	"use_aws":      "run an aws CLI subcommand",
	"report_issue": "record a local diagnostic report",
	"gh_issue":     "create a GitHub issue via the gh CLI",
}

// Schema returns name's JSON-Schema argument descriptor, or nil if name
// names no built-in (an unregistered name is the caller's bug, not
// something to default-validate away).
func Schema(name string) json.RawMessage {
	s, ok := schemas[name]
	if !ok {
		return nil
	}
	return json.RawMessage(s)
}

// Description returns name's one-line description, or name itself if
// none is registered.
func Description(name string) string {
	if d, ok := descriptions[name]; ok {
		return d
	}
	return name
}
