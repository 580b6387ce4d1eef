package arm

import (
	"testing"
	"time"
)

func TestCommand_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"grab", Command{Kind: KindGrab}, false},
		{"release", Command{Kind: KindRelease}, false},
		{"home", Command{Kind: KindHome}, false},
		{"status", Command{Kind: KindStatus}, false},
		{"estop", Command{Kind: KindEmergencyStop}, false},
		{"move in range", Command{Kind: KindMove, Joint: JointBase, Angle: 45}, false},
		{"move at bounds", Command{Kind: KindMove, Joint: JointWrist, Angle: 180}, false},
		{"move negative angle", Command{Kind: KindMove, Joint: JointBase, Angle: -1}, true},
		{"move angle too large", Command{Kind: KindMove, Joint: JointElbow, Angle: 181}, true},
		{"move unknown joint", Command{Kind: KindMove, Joint: "FINGER", Angle: 90}, true},
		{"unknown kind", Command{Kind: "DANCE"}, true},
		{"empty kind", Command{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if tc.wantErr && err == nil {
				t.Errorf("Validate(%+v) = nil, want error", tc.cmd)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Validate(%+v) = %v, want nil", tc.cmd, err)
			}
		})
	}
}

func TestCommand_Encode(t *testing.T) {
	if got := Grab(time.Now()).Encode(); got != "GRAB" {
		t.Errorf("Encode() = %q, want GRAB", got)
	}
	if got := Move(JointBase, 45, time.Now()).Encode(); got != "MOVE_BASE_45" {
		t.Errorf("Encode() = %q, want MOVE_BASE_45", got)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	tokens := []string{"GRAB", "RELEASE", "HOME", "STATUS", "EMERGENCY_STOP", "MOVE_SHOULDER_120"}
	for _, token := range tokens {
		cmd, err := Decode(token)
		if err != nil {
			t.Errorf("Decode(%q) error: %v", token, err)
			continue
		}
		if got := cmd.Encode(); got != token {
			t.Errorf("Decode(%q).Encode() = %q", token, got)
		}
	}
}

func TestDecode_Rejects(t *testing.T) {
	for _, token := range []string{"", "DANCE", "MOVE_BASE", "MOVE_BASE_45_9", "MOVE_BASE_1000", "MOVE_FINGER_45", "MOVE_BASE_abc"} {
		if _, err := Decode(token); err == nil {
			t.Errorf("Decode(%q) = nil error, want rejection", token)
		}
	}
}

func TestCommand_Critical(t *testing.T) {
	if !Home(time.Now()).Critical() {
		t.Error("HOME not critical")
	}
	if !(Command{Kind: KindEmergencyStop}).Critical() {
		t.Error("EMERGENCY_STOP not critical")
	}
	if Grab(time.Now()).Critical() {
		t.Error("GRAB marked critical")
	}
}
