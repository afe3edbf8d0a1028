package conversation

import (
	"errors"
	"fmt"
)

// ErrFirstMessageMustBePrompt enforces C2.
var ErrFirstMessageMustBePrompt = errors.New("conversation: first message must be a user prompt")

// ErrToolResultIDMismatch enforces C1.
var ErrToolResultIDMismatch = errors.New("conversation: tool-result ids do not match the preceding assistant tool-uses in order")

// ErrUnexpectedToolResult is returned when a ToolUseResults/CancelledToolUses
// message is appended but the preceding assistant message declared no
// tool-uses to answer.
var ErrUnexpectedToolResult = errors.New("conversation: no pending tool-uses to answer")

// ErrMissingToolResult enforces C1 in the other direction: an assistant
// message with tool-uses must be followed by a matching result, never by a
// bare prompt.
var ErrMissingToolResult = errors.New("conversation: assistant tool-uses require a following tool-result message")

// ErrEmptyPromptAfterToolResult enforces C3's "never appended" clause.
var ErrEmptyPromptAfterToolResult = errors.New("conversation: empty prompt may not follow a tool-result message")

// Conversation is the ordered, append-only message log.
type Conversation struct {
	Messages []Message
}

// New returns an empty conversation.
func New() *Conversation { return &Conversation{} }

func (c *Conversation) last() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// AppendUser appends a user message, enforcing C1–C3. On success it returns
// nil; on invariant violation the conversation is left unmodified and the
// matching sentinel error is returned.
func (c *Conversation) AppendUser(msg UserMessage) error {
	last, hasLast := c.last()

	if !hasLast {
		if msg.Kind != KindPrompt {
			return ErrFirstMessageMustBePrompt
		}
		c.Messages = append(c.Messages, Message{Role: RoleUser, User: &msg})
		return nil
	}

	switch last.Role {
	case RoleAssistant:
		pending := last.Assistant.ToolUses
		if len(pending) > 0 {
			if !msg.isResultKind() {
				return ErrMissingToolResult
			}
			if err := matchIDPrefix(pending, msg.resultIDs()); err != nil {
				return err
			}
		} else if msg.isResultKind() {
			return ErrUnexpectedToolResult
		}
		c.Messages = append(c.Messages, Message{Role: RoleUser, User: &msg})
		return nil

	case RoleUser:
		prevResult := last.User.isResultKind()
		if prevResult && msg.Kind == KindPrompt && msg.Prompt == "" {
			return ErrEmptyPromptAfterToolResult
		}
		if prevResult && msg.isResultKind() {
			// C3 coalescing: merge into the existing tool-result message
			// instead of appending a second consecutive one.
			merged := append(append([]ToolResultBlock(nil), last.User.Results...), msg.Results...)
			if owner := c.Messages[len(c.Messages)-2]; owner.Role == RoleAssistant {
				if err := matchIDPrefix(owner.Assistant.ToolUses, UserMessage{Results: merged}.resultIDs()); err != nil {
					return err
				}
			}
			last.User.Results = merged
			if msg.Kind == KindCancelledToolUses {
				last.User.Kind = KindCancelledToolUses
			}
			c.Messages[len(c.Messages)-1] = last
			return nil
		}
		c.Messages = append(c.Messages, Message{Role: RoleUser, User: &msg})
		return nil
	}
	return fmt.Errorf("conversation: unreachable role %q", last.Role)
}

// AppendAssistant appends an assistant message. The conversation must
// already contain at least one user message (C2), and the two roles must
// strictly alternate.
func (c *Conversation) AppendAssistant(msg AssistantMessage) error {
	last, hasLast := c.last()
	if !hasLast {
		return ErrFirstMessageMustBePrompt
	}
	if last.Role != RoleUser {
		return fmt.Errorf("conversation: assistant message must follow a user message")
	}
	c.Messages = append(c.Messages, Message{Role: RoleAssistant, Assistant: &msg})
	return nil
}

// matchIDs checks that result ids equal pending ids exactly, in order.
func matchIDs(pending []ToolUseBlock, resultIDs []string) error {
	if len(pending) != len(resultIDs) {
		return ErrToolResultIDMismatch
	}
	for i, p := range pending {
		if p.ID != resultIDs[i] {
			return ErrToolResultIDMismatch
		}
	}
	return nil
}

// matchIDPrefix checks that result ids are a non-empty, in-order prefix of
// pending ids, so one batch of results may arrive over coalescing appends.
func matchIDPrefix(pending []ToolUseBlock, resultIDs []string) error {
	if len(resultIDs) == 0 || len(resultIDs) > len(pending) {
		return ErrToolResultIDMismatch
	}
	return matchIDs(pending[:len(resultIDs)], resultIDs)
}

// Validate structurally re-checks every message boundary of an
// already-built Conversation against C1–C3, for property-style tests over
// externally constructed message slices (as opposed to AppendUser's
// incremental, auto-coalescing enforcement).
func Validate(c *Conversation) error {
	msgs := c.Messages
	if len(msgs) == 0 {
		return nil
	}
	if msgs[0].Role != RoleUser || msgs[0].User.Kind != KindPrompt {
		return ErrFirstMessageMustBePrompt
	}
	for i, m := range msgs {
		switch m.Role {
		case RoleAssistant:
			pending := m.Assistant.ToolUses
			if len(pending) == 0 {
				continue
			}
			if i+1 >= len(msgs) {
				return ErrMissingToolResult
			}
			next := msgs[i+1]
			if next.Role != RoleUser || !next.User.isResultKind() {
				return ErrMissingToolResult
			}
			if err := matchIDs(pending, next.User.resultIDs()); err != nil {
				return err
			}
		case RoleUser:
			if i == 0 {
				continue
			}
			prev := msgs[i-1]
			if prev.Role != RoleUser || !prev.User.isResultKind() {
				continue
			}
			if m.User.isResultKind() {
				return fmt.Errorf("conversation: consecutive tool-result messages at index %d (C3 violation)", i)
			}
			if m.User.Kind == KindPrompt && m.User.Prompt == "" {
				return ErrEmptyPromptAfterToolResult
			}
		}
	}
	return nil
}
