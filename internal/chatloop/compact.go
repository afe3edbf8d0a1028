package chatloop

import (
	"context"
	"errors"
	"strings"

	"github.com/viant/qterm/internal/conversation"
	"github.com/viant/qterm/internal/log"
	"github.com/viant/qterm/internal/streamdecoder"
)

// turnStarts returns the index of every message that opens a new turn: a
// user message carrying a fresh Prompt (as opposed to a ToolUseResults
// continuation of the turn already in progress).
func turnStarts(msgs []conversation.Message) []int {
	var starts []int
	for i, m := range msgs {
		if m.Role == conversation.RoleUser && m.User.Kind == conversation.KindPrompt {
			starts = append(starts, i)
		}
	}
	return starts
}

func renderMessages(msgs []conversation.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		switch {
		case m.Role == conversation.RoleUser && m.User.Kind == conversation.KindPrompt:
			b.WriteString("user: ")
			b.WriteString(m.User.Prompt)
			b.WriteString("\n")
		case m.Role == conversation.RoleUser:
			b.WriteString("tool-results:\n")
			for _, r := range m.User.Results {
				for _, c := range r.Content {
					if c.Text != "" {
						b.WriteString("  ")
						b.WriteString(c.Text)
						b.WriteString("\n")
					}
				}
			}
		case m.Role == conversation.RoleAssistant:
			b.WriteString("assistant: ")
			b.WriteString(m.Assistant.ContentText)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// summarize asks the assistant client to condense middle into a short
// paragraph, on a throwaway conversation so it never touches l.Conv.
func (l *Loop) summarize(ctx context.Context, middle []conversation.Message) (string, error) {
	prompt := "Summarize the following conversation segment concisely, preserving important facts and decisions:\n\n" + renderMessages(middle)
	tmp := conversation.New()
	if err := tmp.AppendUser(conversation.UserMessage{Kind: conversation.KindPrompt, Prompt: prompt}); err != nil {
		return "", err
	}
	events, err := l.Client.Stream(ctx, tmp)
	if err != nil {
		return "", err
	}
	dec := streamdecoder.New(nil)
	msg, err := dec.Consume(ctx, events)
	if err != nil {
		var streamErr *streamdecoder.ErrStreamError
		if !errors.As(err, &streamErr) {
			return "", err
		}
	}
	return msg.ContentText, nil
}

// compact replaces every message between the original first user message
// and the last keepTurns turns with a single synthesized assistant summary
// message (the first turn's replies are summarized too),
// preserving conversation invariants C1-C3. A conversation too short to
// compact is left untouched.
func (l *Loop) compact(ctx context.Context, keepTurns int) {
	if keepTurns <= 0 {
		keepTurns = l.CompactKeepTurns
	}
	msgs := l.Conv.Messages
	if len(msgs) == 0 {
		return
	}
	starts := turnStarts(msgs)
	if len(starts) <= keepTurns+1 {
		return
	}

	tailStart := starts[len(starts)-keepTurns]
	first := msgs[0]
	middle := msgs[1:tailStart]
	tail := msgs[tailStart:]
	if len(middle) == 0 {
		return
	}

	summary, err := l.summarize(ctx, middle)
	if err != nil {
		l.printf("compact: %v\n", err)
		return
	}

	rebuilt := make([]conversation.Message, 0, 2+len(tail))
	rebuilt = append(rebuilt, first)
	rebuilt = append(rebuilt, conversation.Message{
		Role:      conversation.RoleAssistant,
		Assistant: &conversation.AssistantMessage{ContentText: summary},
	})
	rebuilt = append(rebuilt, tail...)
	l.Conv.Messages = rebuilt

	l.events().Publish(log.Event{EventType: log.CompactionRun, Payload: len(middle)})
}
