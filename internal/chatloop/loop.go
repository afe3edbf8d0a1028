// Package chatloop implements the Tool Loop (§4.6): the single-threaded
// cooperative state machine PromptUser -> HandleInput -> SendRequest ->
// ReceiveStream -> ExecuteTools that drives one interactive chat session,
// wiring together internal/conversation, internal/llm,
// internal/streamdecoder, and internal/toolmanager the way the teacher's
// chat.go wires its own SDK client, buffer, and tool executor together.
package chatloop

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/viant/qterm/internal/contextmgr"
	"github.com/viant/qterm/internal/conversation"
	"github.com/viant/qterm/internal/llm"
	"github.com/viant/qterm/internal/log"
	"github.com/viant/qterm/internal/mcpsupervisor"
	"github.com/viant/qterm/internal/streamdecoder"
	"github.com/viant/qterm/internal/tokenacct"
	"github.com/viant/qterm/internal/toolmanager"
)

// LineReader yields the next line of user input. ok is false at EOF.
type LineReader func() (line string, ok bool)

// Loop owns one chat session's state machine.
type Loop struct {
	Conv       *conversation.Conversation
	Client     llm.StreamClient
	Tools      *toolmanager.Manager
	Accountant *tokenacct.Accountant
	Events     *log.Collector

	Out          io.Writer
	TerminalType string
	Confirm      toolmanager.Confirmer

	// Context backs the /profile and /context slash commands, Supervisor
	// and MCPConfigPath back /mcp, and ModelName is what /model prints.
	// Context and Supervisor may be left nil when the corresponding
	// subsystem is not wired in (the slash command then reports
	// unavailability).
	Context       *contextmgr.Manager
	Supervisor    *mcpsupervisor.Supervisor
	MCPConfigPath string
	ModelName     string

	// CompactKeepTurns is how many trailing turns survive automatic and
	// `/compact` compaction, alongside the original first user message.
	CompactKeepTurns int

	quit bool
}

// New returns a Loop ready to Run. acct may be nil, in which case an
// Accountant for tokenacct.DefaultProfile is used. Events is left nil, so
// events go to log.Default until a caller sets it.
func New(conv *conversation.Conversation, client llm.StreamClient, tools *toolmanager.Manager, acct *tokenacct.Accountant, out io.Writer) *Loop {
	if acct == nil {
		acct = tokenacct.New(tokenacct.DefaultProfile)
	}
	return &Loop{
		Conv:             conv,
		Client:           client,
		Tools:            tools,
		Accountant:       acct,
		Out:              out,
		CompactKeepTurns: tokenacct.DefaultCompactKeepTurns,
	}
}

func (l *Loop) events() *log.Collector {
	if l.Events != nil {
		return l.Events
	}
	return log.Default
}

// Run drives PromptUser until lines is exhausted, ctx is cancelled, or a
// `/quit` slash command runs.
func (l *Loop) Run(ctx context.Context, lines LineReader) error {
	for {
		if l.quit || ctx.Err() != nil {
			return nil
		}
		line, ok := lines()
		if !ok {
			return nil
		}
		if isSlashCommand(line) {
			l.handleSlash(ctx, line)
			continue
		}
		if err := l.handleInput(ctx, line); err != nil {
			fmt.Fprintf(l.Out, "error: %v\n", err)
		}
	}
}

// handleInput appends the user prompt and drives SendRequest ->
// ReceiveStream -> ExecuteTools until the assistant turn requests no
// further tools.
func (l *Loop) handleInput(ctx context.Context, text string) error {
	if err := l.Conv.AppendUser(conversation.UserMessage{Kind: conversation.KindPrompt, Prompt: text}); err != nil {
		return err
	}
	return l.turn(ctx)
}

func (l *Loop) turn(ctx context.Context) error {
	for {
		events, err := l.Client.Stream(ctx, l.Conv)
		if err != nil {
			return err
		}

		dec := streamdecoder.New(func(delta string) { fmt.Fprint(l.Out, delta) })
		msg, decErr := dec.Consume(ctx, events)
		fmt.Fprintln(l.Out)

		if decErr != nil {
			var streamErr *streamdecoder.ErrStreamError
			if !errors.As(decErr, &streamErr) && !errors.Is(decErr, context.Canceled) {
				return decErr
			}
		}

		if err := l.Conv.AppendAssistant(msg); err != nil {
			return err
		}
		if len(msg.ToolUses) == 0 {
			if l.shouldAutoCompact() {
				l.compact(ctx, l.CompactKeepTurns)
			}
			return nil
		}

		results, cancelled := l.executeTools(ctx, msg.ToolUses)
		if cancelled {
			return l.Conv.AppendUser(conversation.UserMessage{
				Kind:    conversation.KindCancelledToolUses,
				Results: results,
			})
		}
		if err := l.Conv.AppendUser(conversation.UserMessage{
			Kind:    conversation.KindToolUseResults,
			Results: results,
		}); err != nil {
			return err
		}

		if l.shouldAutoCompact() {
			l.compact(ctx, l.CompactKeepTurns)
		}
	}
}

// executeTools dispatches each tool-use in declaration order, honoring
// trust policy via Tool Manager's own confirm hook. A context cancellation
// observed before a tool starts marks it and every remaining tool-use as
// cancelled (cancelled=true) without dispatching them.
func (l *Loop) executeTools(ctx context.Context, uses []conversation.ToolUseBlock) ([]conversation.ToolResultBlock, bool) {
	results := make([]conversation.ToolResultBlock, 0, len(uses))
	for i, use := range uses {
		if ctx.Err() != nil {
			for _, remaining := range uses[i:] {
				results = append(results, cancelledResult(remaining.ID))
			}
			return results, true
		}
		l.events().Publish(log.Event{EventType: log.ToolInput, Payload: use})
		res := l.Tools.Dispatch(ctx, use, l.confirmWithBell())
		l.events().Publish(log.Event{EventType: log.ToolOutput, Payload: res})
		results = append(results, res)
	}
	return results, false
}

func cancelledResult(toolUseID string) conversation.ToolResultBlock {
	return conversation.ToolResultBlock{
		ToolUseID: toolUseID,
		Status:    conversation.StatusError,
		Content:   []conversation.ContentPart{conversation.TextContent("cancelled")},
	}
}

func (l *Loop) shouldAutoCompact() bool {
	usage := l.Accountant.Usage(l.conversationChars())
	return usage.OverHighWater
}

func (l *Loop) conversationChars() int {
	n := 0
	for _, m := range l.Conv.Messages {
		if m.User != nil {
			n += len(m.User.Prompt) + len(m.User.AdditionalContext)
			for _, r := range m.User.Results {
				for _, c := range r.Content {
					n += len(c.Text) + len(c.JSON)
				}
			}
		}
		if m.Assistant != nil {
			n += len(m.Assistant.ContentText)
			for _, tu := range m.Assistant.ToolUses {
				n += len(tu.Args)
			}
		}
	}
	return n
}

func isSlashCommand(line string) bool {
	return len(line) > 0 && line[0] == '/'
}

func (l *Loop) printf(format string, args ...any) {
	fmt.Fprintf(l.Out, format, args...)
}
