package cli

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/viant/qterm/internal/ipc"
	"github.com/viant/qterm/internal/session"
)

// HookCmd is the shell-wrapper hook entry point (§6): `hook <kind> [args]`.
// It always exits 0 silently on any failure, since a hook call races a chat
// process that may not be running yet or may have already exited.
type HookCmd struct {
	Args struct {
		Kind string   `positional-arg-name:"kind"`
		Rest []string `positional-arg-name:"args"`
	} `positional-args:"yes"`
}

const hookDialTimeout = 500 * time.Millisecond

func (c *HookCmd) Execute(_ []string) error {
	sessionID := os.Getenv("QTERM_SESSION_ID")
	if sessionID == "" {
		return nil
	}

	frame, ok := buildHookFrame(sessionID, c.Args.Kind, c.Args.Rest)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), hookDialTimeout)
	defer cancel()
	conn, err := ipc.Dial(ctx, ipc.SessionSocketPath(sessionID), hookDialTimeout)
	if err != nil {
		return nil
	}
	defer conn.Close()

	_ = ipc.NewFrameConn(conn).Send(frame)
	return nil
}

// buildHookFrame translates a hook kind and its positional args into an IPC
// frame. editbuffer/prompt/preexec/postexec map onto session.Hook variants
// encoded via gob (internal/session/wire.go); the remaining shell-wrapper
// lifecycle kinds (ssh, init, integration-ready, intercepted-key,
// clear-autocomplete-cache) carry no structured payload and ride as a bare
// session-control frame tagged with their kind name.
func buildHookFrame(sessionID, kind string, args []string) (ipc.Frame, bool) {
	switch kind {
	case "editbuffer":
		if len(args) < 1 {
			return ipc.Frame{}, false
		}
		cursor := len(args[0])
		if len(args) >= 2 {
			if n, err := strconv.Atoi(args[1]); err == nil {
				cursor = n
			}
		}
		return encodeHookFrame(sessionID, session.EditBufferUpdated{Text: args[0], Cursor: cursor})
	case "prompt":
		return encodeHookFrame(sessionID, session.Prompt{})
	case "preexec":
		return encodeHookFrame(sessionID, session.PreExec{})
	case "postexec":
		exitCode := 0
		command := ""
		if len(args) >= 1 {
			command = args[0]
		}
		if len(args) >= 2 {
			if n, err := strconv.Atoi(args[1]); err == nil {
				exitCode = n
			}
		}
		return encodeHookFrame(sessionID, session.PostExec{Command: command, ExitCode: exitCode})
	case "ssh", "init", "integration-ready", "intercepted-key", "clear-autocomplete-cache":
		return ipc.Frame{
			Kind:      ipc.KindSessionControl,
			SessionID: sessionID,
			Body:      []byte(kind + " " + strings.Join(args, " ")),
		}, true
	default:
		return ipc.Frame{}, false
	}
}

func encodeHookFrame(sessionID string, hook session.Hook) (ipc.Frame, bool) {
	body, err := session.EncodeHook(hook)
	if err != nil {
		return ipc.Frame{}, false
	}
	return ipc.Frame{Kind: ipc.KindHook, SessionID: sessionID, Body: body}, true
}
