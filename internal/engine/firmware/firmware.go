// Package firmware isolates the per-firmware differences of the protocol:
// mode numbering tables and any message types only one firmware family
// emits. The rest of the engine is firmware-agnostic and consumes this
// strategy interface.
package firmware

import (
	"github.com/groundlink-io/groundlink/internal/mavlink"
)

// Mode is one named, numbered flight mode of a vehicle type.
type Mode struct {
	Name  string
	Value uint32

	// Internal marks modes that exist in the numbering but are not
	// user-invocable (boot/pre-flight placeholders). They resolve in
	// telemetry but are excluded from action registration.
	Internal bool
}

// Firmware is the per-firmware strategy object.
type Firmware interface {
	// Name identifies the firmware family, e.g. "ardupilot".
	Name() string

	// Modes lists the mode table for a vehicle type, in a stable order.
	// An empty result means the vehicle type is not supported.
	Modes(vehicleType uint8) []Mode

	// ModeName resolves a custom mode number to its name.
	ModeName(vehicleType uint8, customMode uint32) (string, bool)

	// HandleSpecific gives the firmware a chance to consume message types
	// outside the common catalog. It reports whether the message was handled.
	HandleSpecific(env mavlink.Envelope) bool
}

// ModeValue finds a mode by name in a firmware's table for a vehicle type.
func ModeValue(fw Firmware, vehicleType uint8, name string) (uint32, bool) {
	for _, m := range fw.Modes(vehicleType) {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}
