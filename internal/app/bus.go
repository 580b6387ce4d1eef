package app

import (
	"sync"
	"time"
)

// EventKind identifies a pipeline event on the bus.
type EventKind string

const (
	EventSessionStarted    EventKind = "session.started"
	EventSessionReset      EventKind = "session.reset"
	EventGestureClose      EventKind = "gesture.close"
	EventGestureOpen       EventKind = "gesture.open"
	EventCycleComplete     EventKind = "cycle.complete"
	EventCommandEmitted    EventKind = "command.emitted"
	EventCommandSuppressed EventKind = "command.suppressed"
	EventCommandSent       EventKind = "command.sent"
	EventCommandFailed     EventKind = "command.failed"
	EventEmergencyStop     EventKind = "estop.fired"
	EventResume            EventKind = "estop.cleared"
)

// Event is one pipeline occurrence, published to live subscribers and
// journaled to the store.
type Event struct {
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"session_id"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// subscriberBuffer bounds each subscriber channel. A subscriber that falls
// further behind loses events rather than stalling the pipeline.
const subscriberBuffer = 64

// Bus fans pipeline events out to subscribers. Publish never blocks.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber and returns its channel plus a cancel
// function. The channel is closed on cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber with room in its buffer.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
