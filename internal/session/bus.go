package session

import "sync"

// Event pairs a dispatched hook with the session it was applied to, for
// subscribers that need to react to shell activity (e.g. the Tool Loop
// cancelling "only-when-idle" tool invocations on PreExec).
type Event struct {
	SessionID string
	Hook      Hook
}

// Bus dispatches hooks into a Registry and fans each successfully applied
// hook out to subscribers (non-blocking, drop-on-full — a slow subscriber
// must not stall shell observation).
type Bus struct {
	reg *Registry

	mu   sync.Mutex
	subs []chan Event
}

// NewBus wraps reg with hook broadcasting.
func NewBus(reg *Registry) *Bus { return &Bus{reg: reg} }

// Dispatch applies hook to sessionID via the underlying Registry and, on
// success, publishes an Event to every subscriber.
func (b *Bus) Dispatch(sessionID string, hook Hook) error {
	if err := Dispatch(b.reg, sessionID, hook); err != nil {
		return err
	}
	b.publish(Event{SessionID: sessionID, Hook: hook})
	return nil
}

func (b *Bus) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a receive-only channel of hook events, buffered to size.
func (b *Bus) Subscribe(size int) <-chan Event {
	ch := make(chan Event, size)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Registry returns the underlying Registry.
func (b *Bus) Registry() *Registry { return b.reg }
