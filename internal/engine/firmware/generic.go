package firmware

import (
	"github.com/groundlink-io/groundlink/internal/mavlink"
)

// Generic is the fallback strategy for firmwares without a dedicated table.
// It exposes a minimal mode set shared by most MAVLink autopilots.
type Generic struct{}

var _ Firmware = (*Generic)(nil)

func (Generic) Name() string { return "generic" }

var genericModes = []Mode{
	{Name: "MANUAL", Value: 1},
	{Name: "STABILIZED", Value: 2},
	{Name: "GUIDED", Value: 3},
	{Name: "AUTO", Value: 4},
	{Name: "LOITER", Value: 5},
	{Name: "RTL", Value: 6},
}

func (Generic) Modes(vehicleType uint8) []Mode {
	return genericModes
}

func (g Generic) ModeName(vehicleType uint8, customMode uint32) (string, bool) {
	for _, m := range genericModes {
		if m.Value == customMode {
			return m.Name, true
		}
	}
	return "", false
}

func (Generic) HandleSpecific(env mavlink.Envelope) bool {
	return false
}

// ForAutopilot picks the strategy matching a heartbeat's autopilot field.
func ForAutopilot(autopilot uint8) Firmware {
	if autopilot == mavlink.AutopilotArduPilot {
		return ArduPilot{}
	}
	return Generic{}
}
