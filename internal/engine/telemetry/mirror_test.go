package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/groundlink-io/groundlink/internal/engine/firmware"
	"github.com/groundlink-io/groundlink/internal/mavlink"
)

var primary = mavlink.Identity{SystemID: 1, ComponentID: 1}

func newTestMirror() (*State, *Mirror) {
	state := NewState()
	return state, NewMirror(state, firmware.ArduPilot{}, primary, nil)
}

func envelope(msg mavlink.Message) mavlink.Envelope {
	return mavlink.Envelope{Msg: msg, Sender: primary, ReceivedAt: time.Now()}
}

func TestHeartbeatResolvesMode(t *testing.T) {
	state, m := newTestMirror()

	m.Handle(envelope(&mavlink.Heartbeat{
		VehicleType: mavlink.TypeQuadrotor,
		Autopilot:   mavlink.AutopilotArduPilot,
		BaseMode:    mavlink.ModeFlagCustomModeEnabled | mavlink.ModeFlagSafetyArmed,
		CustomMode:  4, // copter GUIDED
	}))

	if got := state.Mode(); got != "GUIDED" {
		t.Errorf("mode = %q, want GUIDED", got)
	}
	if !state.Armed() {
		t.Error("armed flag not mirrored")
	}
}

func TestHeartbeatUnknownModeStaysUnknown(t *testing.T) {
	state, m := newTestMirror()

	m.Handle(envelope(&mavlink.Heartbeat{
		VehicleType: mavlink.TypeQuadrotor,
		BaseMode:    mavlink.ModeFlagCustomModeEnabled,
		CustomMode:  9999,
	}))

	if got := state.Mode(); got != "unknown" {
		t.Errorf("mode = %q, want unknown", got)
	}
}

func TestSysStatusUnitConversions(t *testing.T) {
	state, m := newTestMirror()

	m.Handle(envelope(&mavlink.SysStatus{
		Load:             355, // tenths of a percent
		VoltageBattery:   12600,
		CurrentBattery:   1520, // cA
		BatteryRemaining: 88,
	}))

	voltage, current, remaining := state.Battery()
	if voltage != 12.6 {
		t.Errorf("voltage = %v, want 12.6", voltage)
	}
	if current == nil || *current != 15.2 {
		t.Errorf("current = %v, want 15.2", current)
	}
	if remaining != 88 {
		t.Errorf("remaining = %d, want 88", remaining)
	}

	if got := state.Snapshot().CPULoad; got != 35.5 {
		t.Errorf("cpu load = %v, want 35.5", got)
	}
}

// SYS_STATUS reports -1 when current is not measured; the mirrored value must
// read as absent, not as a number.
func TestSysStatusCurrentSentinel(t *testing.T) {
	state, m := newTestMirror()

	m.Handle(envelope(&mavlink.SysStatus{VoltageBattery: 12000, CurrentBattery: mavlink.CurrentUnknown}))

	if _, current, _ := state.Battery(); current != nil {
		t.Errorf("current = %v, want absent", *current)
	}
}

func TestAttitudeRadiansToDegrees(t *testing.T) {
	state, m := newTestMirror()

	m.Handle(envelope(&mavlink.Attitude{
		Roll:  math.Pi / 4,
		Pitch: -math.Pi / 2,
		Yaw:   math.Pi,
	}))

	roll, pitch, yaw := state.Attitude()
	const eps = 1e-4
	if math.Abs(roll-45) > eps || math.Abs(pitch+90) > eps || math.Abs(yaw-180) > eps {
		t.Errorf("attitude = (%v, %v, %v), want (45, -90, 180)", roll, pitch, yaw)
	}
}

func TestGlobalPositionConversions(t *testing.T) {
	state, m := newTestMirror()

	m.Handle(envelope(&mavlink.GlobalPositionInt{
		Lat:         473977420,
		Lon:         85455940,
		Alt:         488300, // mm
		RelativeAlt: 50000,
		Vx:          250, // cm/s
		Hdg:         18050,
	}))

	lat, lon := state.Position()
	if math.Abs(lat-47.3977420) > 1e-9 || math.Abs(lon-8.5455940) > 1e-9 {
		t.Errorf("position = (%v, %v)", lat, lon)
	}

	msl, rel := state.Altitude()
	if msl != 488.3 || rel != 50 {
		t.Errorf("altitude = (%v, %v), want (488.3, 50)", msl, rel)
	}

	heading, ok := state.Heading()
	if !ok || heading != 180.5 {
		t.Errorf("heading = %v (%v), want 180.5", heading, ok)
	}

	if got := state.Snapshot().VelocityX; got != 2.5 {
		t.Errorf("vx = %v, want 2.5", got)
	}
}

func TestGlobalPositionHeadingSentinel(t *testing.T) {
	state, m := newTestMirror()

	m.Handle(envelope(&mavlink.GlobalPositionInt{Hdg: mavlink.HeadingUnknown}))

	if _, ok := state.Heading(); ok {
		t.Error("heading reported despite the unknown sentinel")
	}
}

func TestMirrorIgnoresOtherSenders(t *testing.T) {
	state, m := newTestMirror()

	m.Handle(mavlink.Envelope{
		Msg:        &mavlink.SysStatus{VoltageBattery: 9999},
		Sender:     mavlink.Identity{SystemID: 42, ComponentID: 1},
		ReceivedAt: time.Now(),
	})

	if voltage, _, _ := state.Battery(); voltage != 0 {
		t.Errorf("state mutated by a non-primary sender: voltage = %v", voltage)
	}
}

// Arm and mode notifications fire only when the value actually changes.
func TestHeartbeatNotifiesOnChangeOnly(t *testing.T) {
	_, m := newTestMirror()

	var armEvents, modeEvents int
	m.OnChange(GroupArmState, func() { armEvents++ })
	m.OnChange(GroupMode, func() { modeEvents++ })

	hb := &mavlink.Heartbeat{
		VehicleType: mavlink.TypeQuadrotor,
		BaseMode:    mavlink.ModeFlagCustomModeEnabled | mavlink.ModeFlagSafetyArmed,
		CustomMode:  0, // copter STABILIZE
	}
	m.Handle(envelope(hb))
	m.Handle(envelope(hb))
	m.Handle(envelope(hb))

	if armEvents != 1 || modeEvents != 1 {
		t.Errorf("events = (%d arm, %d mode), want (1, 1)", armEvents, modeEvents)
	}

	disarmed := *hb
	disarmed.BaseMode = mavlink.ModeFlagCustomModeEnabled
	m.Handle(envelope(&disarmed))

	if armEvents != 2 {
		t.Errorf("arm events after disarm = %d, want 2", armEvents)
	}
}

func TestVfrHudUpdatesAltitude(t *testing.T) {
	state, m := newTestMirror()

	m.Handle(envelope(&mavlink.VfrHud{Alt: 123.5}))

	if msl, _ := state.Altitude(); msl != 123.5 {
		t.Errorf("altitude = %v, want 123.5", msl)
	}
}
