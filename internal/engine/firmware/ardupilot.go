package firmware

import (
	"github.com/groundlink-io/groundlink/internal/mavlink"
)

// ArduPilot carries the mode numbering of the ArduPilot firmware family.
// Copter, rover and sub share the engine but number their modes differently.
type ArduPilot struct{}

var _ Firmware = (*ArduPilot)(nil)

func (ArduPilot) Name() string { return "ardupilot" }

var copterModes = []Mode{
	{Name: "STABILIZE", Value: 0},
	{Name: "ACRO", Value: 1},
	{Name: "ALT_HOLD", Value: 2},
	{Name: "AUTO", Value: 3},
	{Name: "GUIDED", Value: 4},
	{Name: "LOITER", Value: 5},
	{Name: "RTL", Value: 6},
	{Name: "CIRCLE", Value: 7},
	{Name: "LAND", Value: 9},
	{Name: "DRIFT", Value: 11},
	{Name: "SPORT", Value: 13},
	{Name: "POSHOLD", Value: 16},
	{Name: "BRAKE", Value: 17},
	{Name: "SMART_RTL", Value: 21},
	{Name: "INITIALISING", Value: 24, Internal: true},
}

var roverModes = []Mode{
	{Name: "MANUAL", Value: 0},
	{Name: "ACRO", Value: 1},
	{Name: "STEERING", Value: 3},
	{Name: "HOLD", Value: 4},
	{Name: "LOITER", Value: 5},
	{Name: "AUTO", Value: 10},
	{Name: "RTL", Value: 11},
	{Name: "SMART_RTL", Value: 12},
	{Name: "GUIDED", Value: 15},
	{Name: "INITIALISING", Value: 16, Internal: true},
}

var subModes = []Mode{
	{Name: "STABILIZE", Value: 0},
	{Name: "ACRO", Value: 1},
	{Name: "ALT_HOLD", Value: 2},
	{Name: "AUTO", Value: 3},
	{Name: "GUIDED", Value: 4},
	{Name: "CIRCLE", Value: 7},
	{Name: "SURFACE", Value: 9},
	{Name: "POSHOLD", Value: 16},
	{Name: "MANUAL", Value: 19},
}

var planeModes = []Mode{
	{Name: "MANUAL", Value: 0},
	{Name: "CIRCLE", Value: 1},
	{Name: "STABILIZE", Value: 2},
	{Name: "ACRO", Value: 4},
	{Name: "FBWA", Value: 5},
	{Name: "FBWB", Value: 6},
	{Name: "CRUISE", Value: 7},
	{Name: "AUTO", Value: 10},
	{Name: "RTL", Value: 11},
	{Name: "LOITER", Value: 12},
	{Name: "GUIDED", Value: 15},
	{Name: "INITIALISING", Value: 16, Internal: true},
	{Name: "TAKEOFF", Value: 13},
}

func (ArduPilot) Modes(vehicleType uint8) []Mode {
	switch vehicleType {
	case mavlink.TypeQuadrotor:
		return copterModes
	case mavlink.TypeGroundRover:
		return roverModes
	case mavlink.TypeSubmarine:
		return subModes
	case mavlink.TypeFixedWing:
		return planeModes
	default:
		return nil
	}
}

func (a ArduPilot) ModeName(vehicleType uint8, customMode uint32) (string, bool) {
	for _, m := range a.Modes(vehicleType) {
		if m.Value == customMode {
			return m.Name, true
		}
	}
	return "", false
}

// HandleSpecific is a no-op: the common catalog covers everything ArduPilot
// sends that this engine consumes.
func (ArduPilot) HandleSpecific(env mavlink.Envelope) bool {
	return false
}
