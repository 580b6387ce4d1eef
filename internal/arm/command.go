// Package arm models robotic arm commands and dispatches them to the
// hardware channel with queueing, acknowledgement, and emergency-stop
// handling.
package arm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies a command in the arm's wire vocabulary.
type Kind string

const (
	// KindGrab closes the gripper.
	KindGrab Kind = "GRAB"
	// KindRelease opens the gripper.
	KindRelease Kind = "RELEASE"
	// KindHome returns all joints to their neutral position.
	KindHome Kind = "HOME"
	// KindStatus requests a status report from the arm.
	KindStatus Kind = "STATUS"
	// KindMove positions a single joint at an absolute angle.
	KindMove Kind = "MOVE"
	// KindEmergencyStop halts all motion immediately. It never travels
	// through the queue; the dispatcher sends it directly.
	KindEmergencyStop Kind = "EMERGENCY_STOP"
)

// Joint names an addressable arm joint for MOVE commands.
type Joint string

const (
	JointBase     Joint = "BASE"
	JointShoulder Joint = "SHOULDER"
	JointElbow    Joint = "ELBOW"
	JointWrist    Joint = "WRIST"
)

// MinAngle and MaxAngle bound the absolute angle of a MOVE command.
const (
	MinAngle = 0
	MaxAngle = 180
)

var joints = map[Joint]bool{
	JointBase:     true,
	JointShoulder: true,
	JointElbow:    true,
	JointWrist:    true,
}

// Command is one operation for the arm. Joint and Angle are meaningful only
// for KindMove.
type Command struct {
	Kind  Kind      `json:"kind"`
	Joint Joint     `json:"joint,omitempty"`
	Angle int       `json:"angle,omitempty"`
	At    time.Time `json:"at"`
}

// Grab returns a gripper-close command stamped at t.
func Grab(t time.Time) Command { return Command{Kind: KindGrab, At: t} }

// Release returns a gripper-open command stamped at t.
func Release(t time.Time) Command { return Command{Kind: KindRelease, At: t} }

// Home returns a return-to-neutral command stamped at t.
func Home(t time.Time) Command { return Command{Kind: KindHome, At: t} }

// Move returns a single-joint positioning command stamped at t.
func Move(joint Joint, angle int, t time.Time) Command {
	return Command{Kind: KindMove, Joint: joint, Angle: angle, At: t}
}

// Validate checks the command against the wire vocabulary: the kind must be
// whitelisted, and MOVE commands need a known joint and an in-range angle.
func (c Command) Validate() error {
	switch c.Kind {
	case KindGrab, KindRelease, KindHome, KindStatus, KindEmergencyStop:
		return nil
	case KindMove:
		if !joints[c.Joint] {
			return fmt.Errorf("unknown joint %q", c.Joint)
		}
		if c.Angle < MinAngle || c.Angle > MaxAngle {
			return fmt.Errorf("angle %d out of range [%d, %d]", c.Angle, MinAngle, MaxAngle)
		}
		return nil
	default:
		return fmt.Errorf("unknown command kind %q", c.Kind)
	}
}

// Critical reports whether the command must survive queue-full eviction.
func (c Command) Critical() bool {
	return c.Kind == KindHome || c.Kind == KindEmergencyStop
}

// Encode renders the command as its wire token, without terminator.
// MOVE commands encode joint and angle into the token: "MOVE_BASE_45".
func (c Command) Encode() string {
	if c.Kind == KindMove {
		return string(c.Kind) + "_" + string(c.Joint) + "_" + strconv.Itoa(c.Angle)
	}
	return string(c.Kind)
}

// Decode parses a wire token back into a Command. The result is validated.
func Decode(token string) (Command, error) {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, string(KindMove)+"_") {
		parts := strings.Split(token, "_")
		if len(parts) != 3 {
			return Command{}, fmt.Errorf("malformed move token %q", token)
		}
		angle, err := strconv.Atoi(parts[2])
		if err != nil {
			return Command{}, fmt.Errorf("malformed move angle in %q: %w", token, err)
		}
		cmd := Command{Kind: KindMove, Joint: Joint(parts[1]), Angle: angle}
		if err := cmd.Validate(); err != nil {
			return Command{}, err
		}
		return cmd, nil
	}
	cmd := Command{Kind: Kind(token)}
	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}
