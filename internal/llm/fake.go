package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/qterm/internal/conversation"
)

// ScriptedTurn is one canned assistant reply a FakeClient will emit in
// response to a Stream call, in order.
type ScriptedTurn struct {
	Text     string
	ToolUses []ScriptedToolUse
}

// ScriptedToolUse is one tool invocation a ScriptedTurn requests.
type ScriptedToolUse struct {
	ID       string
	Name     string
	ArgsJSON string
}

// FakeClient is a deterministic, in-memory StreamClient used by tests and by
// `chat --no-interactive` scripted scenarios: no network, no vendor wire
// format, just a fixed sequence of turns played back one per call.
type FakeClient struct {
	mu     sync.Mutex
	turns  []ScriptedTurn
	cursor int
}

// NewFakeClient returns a FakeClient that plays back turns in order,
// erroring once the script is exhausted.
func NewFakeClient(turns ...ScriptedTurn) *FakeClient {
	return &FakeClient{turns: turns}
}

// Stream implements StreamClient.
func (f *FakeClient) Stream(ctx context.Context, conv *conversation.Conversation) (<-chan StreamEvent, error) {
	f.mu.Lock()
	if f.cursor >= len(f.turns) {
		f.mu.Unlock()
		return nil, fmt.Errorf("llm: fake client script exhausted after %d turn(s)", len(f.turns))
	}
	turn := f.turns[f.cursor]
	f.cursor++
	f.mu.Unlock()

	out := make(chan StreamEvent, 4+len(turn.ToolUses)*3)
	go func() {
		defer close(out)
		if turn.Text != "" {
			select {
			case out <- StreamEvent{Kind: TextDelta, Text: turn.Text}:
			case <-ctx.Done():
				out <- StreamEvent{Kind: Error, Err: ctx.Err()}
				return
			}
		}
		for _, tu := range turn.ToolUses {
			events := []StreamEvent{
				{Kind: ToolUseStart, ToolUseID: tu.ID, ToolName: tu.Name},
				{Kind: ToolUseDelta, ToolUseID: tu.ID, ArgsDelta: tu.ArgsJSON},
				{Kind: ToolUseEnd, ToolUseID: tu.ID, ToolName: tu.Name, ArgsJSON: tu.ArgsJSON},
			}
			for _, ev := range events {
				select {
				case out <- ev:
				case <-ctx.Done():
					out <- StreamEvent{Kind: Error, Err: ctx.Err()}
					return
				}
			}
		}
		out <- StreamEvent{Kind: Done}
	}()
	return out, nil
}

// Remaining reports how many scripted turns have not yet been consumed.
func (f *FakeClient) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.turns) - f.cursor
}
