package session

import (
	"errors"
	"time"
)

// ErrSessionGone is returned when a hook sender races a session teardown.
// The sender must not retry.
var ErrSessionGone = errors.New("session: gone")

// Hook is the closed set of shell-wrapper events delivered into the chat
// process over the IPC Fabric (§4.2).
type Hook interface{ isHook() }

// EditBufferUpdated replaces the edit buffer atomically.
type EditBufferUpdated struct {
	Text   string
	Cursor int
}

// Prompt signals the shell has redrawn its prompt (a quiescence signal).
type Prompt struct{}

// PreExec signals the shell is about to execute a command.
type PreExec struct{}

// PostExec carries the command and exit code of a just-finished command.
type PostExec struct {
	Command  string
	ExitCode int
}

// ShellContextChanged carries a full replacement shell-context snapshot.
type ShellContextChanged struct {
	Context ShellContext
}

func (EditBufferUpdated) isHook()   {}
func (Prompt) isHook()              {}
func (PreExec) isHook()             {}
func (PostExec) isHook()            {}
func (ShellContextChanged) isHook() {}

// CommandHistoryEntry records one executed command, its exit code and when
// it ran. Dispatch keeps no command history: a PostExec hook only clears the
// in-preexec flag.
type CommandHistoryEntry struct {
	Command  string
	ExitCode int
	At       time.Time
}

// Dispatch applies hook to the session named sessionID, returning
// ErrSessionGone if the session does not exist or has already been torn
// down. Callers must not retry on ErrSessionGone.
func Dispatch(reg *Registry, sessionID string, hook Hook) error {
	applied := reg.UpdateWith(sessionID, func(rec *Record) {
		rec.LastReceive = time.Now()
		switch h := hook.(type) {
		case EditBufferUpdated:
			rec.EditBuffer = EditBuffer{Text: h.Text, Cursor: h.Cursor}
		case Prompt:
			// Quiescence signal only; no state mutation beyond LastReceive.
		case PreExec:
			if rec.ShellContext != nil {
				ctx := *rec.ShellContext
				ctx.InPreexec = true
				rec.ShellContext = &ctx
			}
		case PostExec:
			if rec.ShellContext != nil {
				ctx := *rec.ShellContext
				ctx.InPreexec = false
				rec.ShellContext = &ctx
			}
		case ShellContextChanged:
			ctx := h.Context
			rec.ShellContext = &ctx
		}
	})
	if !applied {
		return ErrSessionGone
	}
	return nil
}
