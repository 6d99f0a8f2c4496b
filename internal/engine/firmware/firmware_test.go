package firmware

import (
	"testing"

	"github.com/groundlink-io/groundlink/internal/mavlink"
)

func TestForAutopilot(t *testing.T) {
	if fw := ForAutopilot(mavlink.AutopilotArduPilot); fw.Name() != "ardupilot" {
		t.Errorf("ArduPilot autopilot resolved to %q", fw.Name())
	}
	if fw := ForAutopilot(mavlink.AutopilotPX4); fw.Name() != "generic" {
		t.Errorf("unsupported autopilot resolved to %q, want generic", fw.Name())
	}
}

func TestArduPilotModeName(t *testing.T) {
	tests := []struct {
		vehicleType uint8
		customMode  uint32
		want        string
	}{
		{mavlink.TypeQuadrotor, 4, "GUIDED"},
		{mavlink.TypeQuadrotor, 6, "RTL"},
		{mavlink.TypeGroundRover, 10, "AUTO"},
		{mavlink.TypeSubmarine, 19, "MANUAL"},
		{mavlink.TypeFixedWing, 5, "FBWA"},
	}

	fw := ArduPilot{}
	for _, tt := range tests {
		got, ok := fw.ModeName(tt.vehicleType, tt.customMode)
		if !ok || got != tt.want {
			t.Errorf("ModeName(%d, %d) = %q (%v), want %q", tt.vehicleType, tt.customMode, got, ok, tt.want)
		}
	}

	if _, ok := fw.ModeName(mavlink.TypeQuadrotor, 9999); ok {
		t.Error("unmapped mode number resolved")
	}
	if modes := fw.Modes(99); modes != nil {
		t.Errorf("unsupported vehicle type returned %d modes", len(modes))
	}
}

func TestModeValue(t *testing.T) {
	value, ok := ModeValue(ArduPilot{}, mavlink.TypeQuadrotor, "LOITER")
	if !ok || value != 5 {
		t.Errorf("ModeValue(LOITER) = %d (%v), want 5", value, ok)
	}
	if _, ok := ModeValue(ArduPilot{}, mavlink.TypeQuadrotor, "WARP"); ok {
		t.Error("unknown mode name resolved")
	}
}
