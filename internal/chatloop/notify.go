package chatloop

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/qterm/internal/toolmanager"
)

// bellAllowedPrefixes is the terminal-type compatibility allow-list (§4.6):
// unknown terminals stay silent rather than risk an unsupported escape.
var bellAllowedPrefixes = []string{"xterm", "tmux", "konsole", "gnome-terminal", "alacritty", "iterm2"}

func bellAllowed(termType string) bool {
	term := strings.ToLower(strings.TrimSpace(termType))
	if term == "" {
		return false
	}
	for _, prefix := range bellAllowedPrefixes {
		if strings.HasPrefix(term, prefix) {
			return true
		}
	}
	return false
}

// notify emits a bell, iff TerminalType is in the compatibility
// allow-list.
func (l *Loop) notify() {
	if bellAllowed(l.TerminalType) {
		fmt.Fprint(l.Out, "\a")
	}
}

// confirmWithBell wraps l.Confirm so the bell fires exactly when a
// tool-permission prompt is about to be shown (§4.6), not on every
// PromptUser read. Dispatch only invokes the confirmer for an untrusted
// (TrustAsk) tool, so this only rings when a prompt is actually required.
func (l *Loop) confirmWithBell() toolmanager.Confirmer {
	if l.Confirm == nil {
		return nil
	}
	return func(toolUseID, name string, args json.RawMessage) bool {
		l.notify()
		return l.Confirm(toolUseID, name, args)
	}
}
