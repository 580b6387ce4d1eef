// Package gesture turns the EMG envelope into validated fist close/open
// events and maps completed gesture cycles onto grab/release actions.
package gesture

import "time"

// State is the detector's position in the close/open cycle.
type State int

const (
	// StateIdle means no contraction is in progress.
	StateIdle State = iota
	// StateArmedClosing means the envelope is above threshold but the
	// contraction has not yet persisted long enough to count.
	StateArmedClosing
	// StateClosed means a fist close has been confirmed.
	StateClosed
	// StateArmedOpening means the envelope has dropped below threshold but
	// the release has not yet persisted long enough to count.
	StateArmedOpening
)

// String returns the state name for logs and status surfaces.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateArmedClosing:
		return "ARMED_CLOSING"
	case StateClosed:
		return "CLOSED"
	case StateArmedOpening:
		return "ARMED_OPENING"
	default:
		return "UNKNOWN"
	}
}

// EventKind identifies a gesture event.
type EventKind string

const (
	// EventClose is emitted when a fist close is confirmed.
	EventClose EventKind = "CLOSE"
	// EventOpen is emitted when a fist open is confirmed, completing a cycle.
	EventOpen EventKind = "OPEN"
)

// Event is a confirmed gesture transition.
type Event struct {
	Kind EventKind
	At   time.Time
}

// DetectorConfig holds the timing bounds for gesture validation.
type DetectorConfig struct {
	// MinDuration is how long a threshold crossing must persist before it
	// is confirmed as a close or an open.
	MinDuration time.Duration
	// MaxDuration is how long a contraction may last before it is rejected
	// as stuck, measured from the first above-threshold tick.
	MaxDuration time.Duration
	// Cooldown is the dead time after a completed cycle during which no new
	// contraction may arm, suppressing double-fires from one physical squeeze.
	Cooldown time.Duration
}

// DefaultDetectorConfig returns the stock timing bounds: contractions between
// 100 ms and 2 s, with a 500 ms cooldown between cycles.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinDuration: 100 * time.Millisecond,
		MaxDuration: 2000 * time.Millisecond,
		Cooldown:    500 * time.Millisecond,
	}
}

// Stats is a snapshot of detector counters for status surfaces.
type Stats struct {
	State    string `json:"state"`
	Cycles   int    `json:"cycles"`
	Rejected int    `json:"rejected"`
}

// Detector is the gesture state machine. It is driven by calling Update once
// per envelope tick with the envelope sample, the adaptive threshold to
// classify it against, and the tick time; it holds no timers of its own, so
// it is re-entrant and fully deterministic under test.
type Detector struct {
	config DetectorConfig

	state         State
	closeStart    time.Time // first above-threshold tick of this contraction
	openStart     time.Time // first below-threshold tick of this release
	cooldownUntil time.Time
	awaitRelease  bool // rejected contraction still held; no re-arming until release

	cycles   int
	rejected int
}

// NewDetector creates a Detector in the idle state.
func NewDetector(config DetectorConfig) *Detector {
	return &Detector{config: config}
}

// State returns the current state.
func (d *Detector) State() State {
	return d.state
}

// Stats returns a snapshot of the detector counters.
func (d *Detector) Stats() Stats {
	return Stats{
		State:    d.state.String(),
		Cycles:   d.cycles,
		Rejected: d.rejected,
	}
}

// Update advances the state machine by one tick and returns any events
// confirmed at this tick. An EventOpen marks a completed gesture cycle.
//
// Transitions:
//   - IDLE -> ARMED_CLOSING on the first above-threshold tick (cooldown
//     permitting); the contraction start time is recorded.
//   - ARMED_CLOSING -> CLOSED once above-threshold has persisted MinDuration;
//     emits CLOSE. A drop below threshold before that rejects the candidate
//     as noise.
//   - CLOSED -> ARMED_OPENING on the first below-threshold tick. A
//     contraction exceeding MaxDuration is rejected as stuck: back to IDLE
//     with no OPEN, the cycle abandoned, and re-arming held off until the
//     envelope drops below threshold.
//   - ARMED_OPENING -> IDLE once below-threshold has persisted MinDuration;
//     emits OPEN, counts the cycle, and starts the cooldown. A bounce back
//     above threshold returns to CLOSED.
func (d *Detector) Update(env, threshold float64, now time.Time) []Event {
	above := env > threshold

	switch d.state {
	case StateIdle:
		if !above {
			d.awaitRelease = false
		}
		if above && !d.awaitRelease && !now.Before(d.cooldownUntil) {
			d.state = StateArmedClosing
			d.closeStart = now
		}

	case StateArmedClosing:
		if !above {
			// Dropped below threshold before MinDuration: noise.
			d.state = StateIdle
			d.rejected++
			break
		}
		elapsed := now.Sub(d.closeStart)
		if elapsed > d.config.MaxDuration {
			// Unconfirmable contraction, e.g. MinDuration misconfigured
			// above MaxDuration. Reject rather than arm forever.
			d.state = StateIdle
			d.awaitRelease = true
			d.rejected++
			break
		}
		if elapsed >= d.config.MinDuration {
			d.state = StateClosed
			return []Event{{Kind: EventClose, At: now}}
		}

	case StateClosed:
		if now.Sub(d.closeStart) > d.config.MaxDuration {
			// Stuck contraction: abandon the cycle without an OPEN. The
			// still-held tail must not arm a fresh candidate, so IDLE stays
			// disarmed until the envelope actually drops.
			d.state = StateIdle
			d.awaitRelease = true
			d.rejected++
			break
		}
		if !above {
			d.state = StateArmedOpening
			d.openStart = now
		}

	case StateArmedOpening:
		if above {
			// Re-contraction before the open confirmed; the stuck timer
			// keeps running from the original contraction start.
			d.state = StateClosed
			break
		}
		if now.Sub(d.openStart) >= d.config.MinDuration {
			d.state = StateIdle
			d.cycles++
			d.cooldownUntil = now.Add(d.config.Cooldown)
			return []Event{{Kind: EventOpen, At: now}}
		}
	}

	return nil
}

// Reset forces the detector to IDLE and zeroes all timers without emitting
// events. Called on stream disconnect.
func (d *Detector) Reset() {
	d.state = StateIdle
	d.closeStart = time.Time{}
	d.openStart = time.Time{}
	d.cooldownUntil = time.Time{}
	d.awaitRelease = false
	d.cycles = 0
	d.rejected = 0
}
