package arm

import "sync"

// NeutralAngle is the home position of every joint.
const NeutralAngle = 90

// Position mirrors the arm's pose as implied by acknowledged commands. It is
// a model, not a readback: the arm firmware reports no joint telemetry, so
// the pose is advanced only when a command is acked.
type Position struct {
	mu            sync.Mutex
	angles        map[Joint]int
	gripperClosed bool
}

// PositionSnapshot is a copy of the modelled pose for status surfaces.
type PositionSnapshot struct {
	Base          int  `json:"base"`
	Shoulder      int  `json:"shoulder"`
	Elbow         int  `json:"elbow"`
	Wrist         int  `json:"wrist"`
	GripperClosed bool `json:"gripper_closed"`
}

// NewPosition creates a Position with all joints at neutral and the gripper
// open.
func NewPosition() *Position {
	return &Position{angles: neutralAngles()}
}

func neutralAngles() map[Joint]int {
	return map[Joint]int{
		JointBase:     NeutralAngle,
		JointShoulder: NeutralAngle,
		JointElbow:    NeutralAngle,
		JointWrist:    NeutralAngle,
	}
}

// Apply advances the modelled pose by one acknowledged command. STATUS and
// EMERGENCY_STOP do not move the arm and leave the pose unchanged.
func (p *Position) Apply(cmd Command) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch cmd.Kind {
	case KindGrab:
		p.gripperClosed = true
	case KindRelease:
		p.gripperClosed = false
	case KindHome:
		p.angles = neutralAngles()
		p.gripperClosed = false
	case KindMove:
		p.angles[cmd.Joint] = cmd.Angle
	}
}

// Snapshot returns a copy of the modelled pose.
func (p *Position) Snapshot() PositionSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PositionSnapshot{
		Base:          p.angles[JointBase],
		Shoulder:      p.angles[JointShoulder],
		Elbow:         p.angles[JointElbow],
		Wrist:         p.angles[JointWrist],
		GripperClosed: p.gripperClosed,
	}
}

// Reset returns the model to the neutral pose.
func (p *Position) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.angles = neutralAngles()
	p.gripperClosed = false
}
