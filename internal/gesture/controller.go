package gesture

import "time"

// Action is the gripper operation a completed cycle maps to.
type Action string

const (
	// ActionGrab closes the gripper.
	ActionGrab Action = "GRAB"
	// ActionRelease opens the gripper.
	ActionRelease Action = "RELEASE"
)

// Controller maps completed gesture cycles onto alternating grab/release
// actions: odd cycle counts grab, even counts release.
//
// The parity mapping carries no feedback from the physical gripper, so a
// missed or spurious cycle desyncs intent from hardware until the next
// cycle. The mapping is deliberately confined to this type so it can be
// swapped for an explicit open/closed model without touching the detector.
type Controller struct {
	cooldown time.Duration

	count       int
	lastCommand time.Time
	haveLast    bool
}

// NewController creates a Controller with the given command cooldown.
func NewController(cooldown time.Duration) *Controller {
	return &Controller{cooldown: cooldown}
}

// CycleComplete records one completed gesture cycle and returns the action
// its parity maps to, plus whether the action should actually be emitted.
//
// The cycle is always counted, even when the command is suppressed by the
// cooldown: the suppressed cycle's parity is consumed, not reassigned to the
// next cycle.
func (c *Controller) CycleComplete(now time.Time) (Action, bool) {
	c.count++

	action := ActionRelease
	if c.count%2 == 1 {
		action = ActionGrab
	}

	if c.haveLast && now.Sub(c.lastCommand) < c.cooldown {
		return action, false
	}

	c.lastCommand = now
	c.haveLast = true
	return action, true
}

// CycleCount returns the number of cycles since the last reset.
func (c *Controller) CycleCount() int {
	return c.count
}

// NextAction returns the action the next completed cycle would map to.
func (c *Controller) NextAction() Action {
	if (c.count+1)%2 == 1 {
		return ActionGrab
	}
	return ActionRelease
}

// Reset zeroes the cycle counter and cooldown state. Called on stream
// disconnect alongside Detector.Reset.
func (c *Controller) Reset() {
	c.count = 0
	c.lastCommand = time.Time{}
	c.haveLast = false
}
