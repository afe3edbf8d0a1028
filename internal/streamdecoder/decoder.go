// Package streamdecoder accumulates an llm.StreamClient's incremental
// events into the plain text and tool-use blocks a Tool Loop turn needs,
// mirroring the way the teacher's SDK buffers deltas into a full message
// (see client/sdk message buffering) but operating over the llm.StreamEvent
// boundary instead of the SDK's transport event shape.
package streamdecoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/qterm/internal/conversation"
	"github.com/viant/qterm/internal/llm"
)

// TextSink receives each text delta as it arrives, for echoing to a
// terminal. It may be nil.
type TextSink func(delta string)

// partialToolUse accumulates ArgsDelta fragments for one in-flight tool-use
// until its ToolUseEnd arrives.
type partialToolUse struct {
	name string
	args strings.Builder
}

// Decoder turns one assistant turn's event stream into an
// AssistantMessage. It is single-use: construct one per turn.
type Decoder struct {
	onText TextSink

	text     strings.Builder
	partial  map[string]*partialToolUse
	order    []string
	complete []conversation.ToolUseBlock
}

// New returns a Decoder that forwards text deltas to onText as they arrive.
func New(onText TextSink) *Decoder {
	return &Decoder{
		onText:  onText,
		partial: make(map[string]*partialToolUse),
	}
}

// ErrStreamError wraps an Error event's underlying cause.
type ErrStreamError struct{ Err error }

func (e *ErrStreamError) Error() string { return fmt.Sprintf("streamdecoder: stream error: %v", e.Err) }
func (e *ErrStreamError) Unwrap() error { return e.Err }

// Consume drains events until Done, Error, or ctx cancellation, and returns
// the resulting assistant message. On Error it returns the partial message
// decoded so far alongside an *ErrStreamError.
func (d *Decoder) Consume(ctx context.Context, events <-chan llm.StreamEvent) (conversation.AssistantMessage, error) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return d.result(), nil
			}
			if done, err := d.apply(ev); done {
				return d.result(), err
			}
		case <-ctx.Done():
			return d.result(), ctx.Err()
		}
	}
}

// apply folds one event into decoder state. done is true once the turn is
// over (Done or Error), in which case err carries the terminal error, if
// any.
func (d *Decoder) apply(ev llm.StreamEvent) (done bool, err error) {
	switch ev.Kind {
	case llm.TextDelta:
		d.text.WriteString(ev.Text)
		if d.onText != nil {
			d.onText(ev.Text)
		}
	case llm.ToolUseStart:
		d.partial[ev.ToolUseID] = &partialToolUse{name: ev.ToolName}
		d.order = append(d.order, ev.ToolUseID)
	case llm.ToolUseDelta:
		p, ok := d.partial[ev.ToolUseID]
		if !ok {
			// Out-of-order delta for a tool-use never started; tolerate by
			// lazily creating it so a malformed provider cannot crash the loop.
			p = &partialToolUse{}
			d.partial[ev.ToolUseID] = p
			d.order = append(d.order, ev.ToolUseID)
		}
		p.args.WriteString(ev.ArgsDelta)
	case llm.ToolUseEnd:
		p, ok := d.partial[ev.ToolUseID]
		if !ok {
			p = &partialToolUse{}
		}
		if ev.ToolName != "" {
			p.name = ev.ToolName
		}
		args := ev.ArgsJSON
		if args == "" {
			args = p.args.String()
		}
		d.complete = append(d.complete, conversation.ToolUseBlock{
			ID:   ev.ToolUseID,
			Name: p.name,
			Args: []byte(args),
		})
		delete(d.partial, ev.ToolUseID)
	case llm.Done:
		return true, nil
	case llm.Error:
		return true, &ErrStreamError{Err: ev.Err}
	}
	return false, nil
}

func (d *Decoder) result() conversation.AssistantMessage {
	return conversation.AssistantMessage{
		ContentText: d.text.String(),
		ToolUses:    d.complete,
	}
}
