package arm

import (
	"context"
	"sync"
	"time"
)

// MockChannel simulates the arm firmware: every valid command is acknowledged
// with AckOK after a fixed delay, and the full send history is recorded for
// inspection. Safe for concurrent use.
type MockChannel struct {
	// Delay is the simulated round-trip before the ack arrives.
	Delay time.Duration
	// FailNext makes the next Send return ErrNak once, then clears itself.
	FailNext bool

	mu     sync.Mutex
	sent   []Command
	closed bool
}

// NewMockChannel creates a MockChannel with a 10 ms simulated round trip.
func NewMockChannel() *MockChannel {
	return &MockChannel{Delay: 10 * time.Millisecond}
}

// Send validates the command, waits out the simulated round trip, and
// acknowledges.
func (m *MockChannel) Send(ctx context.Context, cmd Command) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return "ERR", ErrNak
	}
	m.sent = append(m.sent, cmd)
	return AckOK, nil
}

// Sent returns a copy of every command acknowledged so far.
func (m *MockChannel) Sent() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.sent))
	copy(out, m.sent)
	return out
}

// Close marks the channel closed.
func (m *MockChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
