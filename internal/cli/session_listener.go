package cli

import (
	"io"
	"net"

	"github.com/google/uuid"

	"github.com/viant/qterm/internal/ipc"
	"github.com/viant/qterm/internal/log"
	"github.com/viant/qterm/internal/session"
)

// startSessionListener mints a fresh session id, registers an empty Record
// for it in reg, and accepts IPC hook frames on its well-known socket
// (§4.2) for the lifetime of the chat process. Each accepted connection is
// served on its own goroutine, matching the per-session-reader concurrency
// model described in §5. The returned closer stops accepting and removes
// the socket file's listener; it is safe to call once.
func startSessionListener(reg *session.Registry) (sessionID string, closer io.Closer, err error) {
	sessionID = uuid.NewString()
	reg.Insert(&session.Record{ID: sessionID})

	listener, err := ipc.Listen(ipc.SessionSocketPath(sessionID))
	if err != nil {
		return "", nil, err
	}
	go acceptHookConns(listener, reg, sessionID)
	return sessionID, listener, nil
}

func acceptHookConns(listener net.Listener, reg *session.Registry, sessionID string) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		go serveHookConn(conn, reg, sessionID)
	}
}

func serveHookConn(conn net.Conn, reg *session.Registry, sessionID string) {
	defer conn.Close()
	fc := ipc.NewFrameConn(conn)
	for {
		frame, err := fc.Receive()
		if err != nil {
			return
		}
		if frame.Kind != ipc.KindHook {
			continue
		}
		hook, err := session.DecodeHook(frame.Body)
		if err != nil {
			continue
		}
		target := frame.SessionID
		if target == "" {
			target = sessionID
		}
		if err := session.Dispatch(reg, target, hook); err != nil {
			log.Default.Publish(log.Event{EventType: log.SessionHook, Payload: err.Error()})
		}
	}
}
