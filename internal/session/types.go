// Package session implements the process-wide table of live shell PTY
// sessions (§4.2): session records, shell-context snapshots, and the hook
// dispatch that mutates them as the shell-side wrapper observes keystrokes
// and command execution.
package session

import (
	"io"
	"time"
)

// ShellContext is a full snapshot of one shell's observable environment.
// Every mutation replaces the whole value — there is no partial patch.
type ShellContext struct {
	Pid              int
	TTYPath          string
	Cwd              string
	ShellPath        string
	Host             string
	Env              map[string]string
	AliasText        string
	InPreexec        bool
	OSCLock          bool
	TerminalCategory string
}

// EditBuffer is the current contents and cursor offset of the shell's
// in-progress command line, replaced atomically on each keystroke hook.
type EditBuffer struct {
	Text   string
	Cursor int
}

// PendingResponse is a one-shot reply channel keyed by a nonce, used to
// correlate a request sent to the shell wrapper with its eventual reply.
type PendingResponse chan []byte

// Record is the Session Record (§3): per-session mutable state owned by the
// Registry. Callers must only mutate a Record through Registry.UpdateWith /
// Registry.WithMostRecent so that the single-writer invariant (I1) holds and
// promotion-to-most-recent happens consistently.
type Record struct {
	ID        string
	Secret    string
	Writer    io.Writer // session-writer: where replies/hook-acks are written

	DeadSince   *time.Time
	EditBuffer  EditBuffer
	LastReceive time.Time

	ShellContext *ShellContext

	InterceptMode       bool
	GlobalInterceptMode bool

	PendingResponses map[uint64]PendingResponse
	NonceCounter     uint64
}

// IsDead reports whether the session has been tombstoned (I3: DeadSince only
// ever transitions from nil to non-nil, never back).
func (r *Record) IsDead() bool { return r.DeadSince != nil }

// NextNonce allocates and records the next pending-response nonce.
func (r *Record) NextNonce(ch PendingResponse) uint64 {
	r.NonceCounter++
	n := r.NonceCounter
	if r.PendingResponses == nil {
		r.PendingResponses = make(map[uint64]PendingResponse)
	}
	r.PendingResponses[n] = ch
	return n
}

// ResolvePending delivers body to the pending response registered under
// nonce, if any, and removes it (fulfilled branch of invariant I2).
func (r *Record) ResolvePending(nonce uint64, body []byte) bool {
	ch, ok := r.PendingResponses[nonce]
	if !ok {
		return false
	}
	delete(r.PendingResponses, nonce)
	select {
	case ch <- body:
	default:
	}
	close(ch)
	return true
}

// DropAllPending closes every outstanding pending-response channel without a
// value (dropped branch of invariant I2), used when a session dies.
func (r *Record) DropAllPending() {
	for nonce, ch := range r.PendingResponses {
		close(ch)
		delete(r.PendingResponses, nonce)
	}
}
