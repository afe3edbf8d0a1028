// Package log implements the process-wide structured event bus (§4.13):
// a small Collector fans Events out to subscriber channels (non-blocking,
// drop-on-full) and an optional file sink JSON-encodes a filtered subset.
// Startup and fatal-error paths use the standard library log package
// directly, exactly as the CLI entrypoint does.
package log

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType classifies an Event.
type EventType string

const (
	ToolInput      EventType = "TOOL_INPUT"
	ToolOutput     EventType = "TOOL_OUTPUT"
	StreamInput    EventType = "STREAM_INPUT"
	StreamOutput   EventType = "STREAM_OUTPUT"
	MCPConnect     EventType = "MCP_CONNECT"
	MCPDisconnect  EventType = "MCP_DISCONNECT"
	MCPNotify      EventType = "MCP_NOTIFY"
	SessionHook    EventType = "SESSION_HOOK"
	CompactionRun  EventType = "COMPACTION_RUN"
)

// Event is one published occurrence.
type Event struct {
	Time      time.Time   `json:"ts"`
	EventType EventType   `json:"eventtype"`
	Payload   interface{} `json:"p"`
}

// Collector collects events and fans them out to subscribers.
type Collector struct {
	mu   sync.RWMutex
	subs []chan Event
}

// Default is the process-wide collector every package publishes through.
var Default = &Collector{}

// Publish sends e to Default's subscribers.
func Publish(e Event) { Default.Publish(e) }

func (c *Collector) Publish(e Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a receive-only channel buffered to buf, fed by every
// subsequent Publish.
func (c *Collector) Subscribe(buf int) <-chan Event {
	ch := make(chan Event, buf)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

// FileSink writes every event (JSON encoded) from Default to w, filtering
// by event type when filters is non-empty. It runs in its own goroutine
// and returns immediately.
func FileSink(w io.Writer, filters ...EventType) {
	want := map[EventType]bool{}
	for _, f := range filters {
		want[f] = true
	}
	go func() {
		enc := json.NewEncoder(w)
		for ev := range Default.Subscribe(100) {
			if len(want) > 0 && !want[ev.EventType] {
				continue
			}
			_ = enc.Encode(ev)
		}
	}()
}
