package mission

import (
	"math"
	"testing"

	"github.com/groundlink-io/groundlink/internal/mavlink"
)

func TestFrameToAltRef(t *testing.T) {
	tests := []struct {
		frame uint8
		want  AltitudeReference
	}{
		{mavlink.FrameGlobal, AltitudeMSL},
		{mavlink.FrameGlobalInt, AltitudeMSL},
		{mavlink.FrameGlobalRelativeAlt, AltitudeRelative},
		{mavlink.FrameGlobalRelativeAltInt, AltitudeRelative},
		{mavlink.FrameGlobalTerrainAlt, AltitudeTerrain},
		{mavlink.FrameGlobalTerrainAltInt, AltitudeTerrain},
		{99, AltitudeRelative}, // unrecognized frame
	}

	for _, tt := range tests {
		if got := frameToAltRef(tt.frame); got != tt.want {
			t.Errorf("frameToAltRef(%d) = %q, want %q", tt.frame, got, tt.want)
		}
	}
}

func TestWaypointItemRoundTrip(t *testing.T) {
	wp := Waypoint{
		Command:      mavlink.CmdNavWaypoint,
		Latitude:     47.3977420,
		Longitude:    -122.3320710,
		Altitude:     55.5,
		AltRef:       AltitudeTerrain,
		Param1:       2.5,
		Current:      true,
		AutoContinue: true,
	}

	item := itemFromWaypoint(wp, 7, testTarget)
	if item.Seq != 7 {
		t.Errorf("seq = %d, want 7", item.Seq)
	}
	if item.Frame != mavlink.FrameGlobalTerrainAltInt {
		t.Errorf("frame = %d, want terrain int", item.Frame)
	}
	if item.X != 473977420 || item.Y != -1223320710 {
		t.Errorf("fixed point position = (%d, %d)", item.X, item.Y)
	}

	back := waypointFromItem(item)
	if math.Abs(back.Latitude-wp.Latitude) > 1e-7 || math.Abs(back.Longitude-wp.Longitude) > 1e-7 {
		t.Errorf("round trip position = (%v, %v), want (%v, %v)",
			back.Latitude, back.Longitude, wp.Latitude, wp.Longitude)
	}
	if back.AltRef != wp.AltRef || back.Altitude != wp.Altitude {
		t.Errorf("round trip altitude = %v %q, want %v %q", back.Altitude, back.AltRef, wp.Altitude, wp.AltRef)
	}
	if !back.Current || !back.AutoContinue {
		t.Error("current/autocontinue flags lost in round trip")
	}
}
