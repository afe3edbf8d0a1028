// Package llm defines the boundary between the Tool Loop and a concrete
// assistant provider. The vendor wire codec for any specific API is out of
// scope; callers depend only on StreamClient.
package llm

import (
	"context"

	"github.com/viant/qterm/internal/conversation"
)

// StreamEventKind discriminates StreamEvent's payload.
type StreamEventKind int

const (
	TextDelta StreamEventKind = iota
	ToolUseStart
	ToolUseDelta
	ToolUseEnd
	Done
	Error
)

func (k StreamEventKind) String() string {
	switch k {
	case TextDelta:
		return "TextDelta"
	case ToolUseStart:
		return "ToolUseStart"
	case ToolUseDelta:
		return "ToolUseDelta"
	case ToolUseEnd:
		return "ToolUseEnd"
	case Done:
		return "Done"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// StreamEvent is one unit of an assistant's streaming reply. Only the
// fields relevant to Kind are populated.
type StreamEvent struct {
	Kind StreamEventKind

	// TextDelta
	Text string

	// ToolUseStart / ToolUseDelta / ToolUseEnd
	ToolUseID   string
	ToolName    string
	ArgsDelta   string // partial JSON fragment, ToolUseDelta only
	ArgsJSON    string // complete JSON, ToolUseEnd only

	// Error
	Err error
}

// StreamClient is the single dependency the Tool Loop has on an assistant
// provider. Stream sends the conversation (plus any system/context
// material the caller has already folded in) and returns a channel of
// incremental events; the channel is closed after a Done or Error event.
type StreamClient interface {
	Stream(ctx context.Context, conv *conversation.Conversation) (<-chan StreamEvent, error)
}
