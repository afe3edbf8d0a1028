package chatloop

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/viant/qterm/internal/toolmanager"
)

// TerminalConfirmer builds a toolmanager.Confirmer that prints the pending
// tool-use to out and reads a y/N/trust-always answer via readLine. A
// "trust always" answer (a bare "a") also escalates the tool's trust
// policy on policy, so subsequent calls run silently.
func TerminalConfirmer(out io.Writer, readLine func() (string, bool), policy *toolmanager.Policy) toolmanager.Confirmer {
	return func(toolUseID, name string, args json.RawMessage) bool {
		fmt.Fprintf(out, "run tool %q with args %s? [y/N/a=trust always] ", name, string(args))
		answer, ok := readLine()
		if !ok {
			return false
		}
		switch answer {
		case "y", "Y":
			return true
		case "a", "A":
			if policy != nil {
				policy.Set(name, toolmanager.TrustAuto)
			}
			return true
		default:
			return false
		}
	}
}
