// Package mission implements the two mission transfer protocols, download
// and upload, as explicit state machines driven by inbound messages.
package mission

import (
	"math"

	"github.com/groundlink-io/groundlink/internal/mavlink"
)

// AltitudeReference says what a waypoint's altitude is measured against.
type AltitudeReference string

const (
	AltitudeMSL      AltitudeReference = "msl"
	AltitudeRelative AltitudeReference = "relative"
	AltitudeTerrain  AltitudeReference = "terrain"
)

// Waypoint is the application's vehicle-agnostic mission step. Coordinates
// are degrees; altitude is meters against AltRef.
type Waypoint struct {
	Command      uint16            `json:"command"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
	Altitude     float64           `json:"altitude"`
	AltRef       AltitudeReference `json:"altitudeReference"`
	Param1       float32           `json:"param1"`
	Param2       float32           `json:"param2"`
	Param3       float32           `json:"param3"`
	Param4       float32           `json:"param4"`
	Current      bool              `json:"current"`
	AutoContinue bool              `json:"autoContinue"`
}

// frameToAltRef maps a MAV_FRAME to the waypoint altitude reference.
// Unrecognized frames read as relative-to-home.
func frameToAltRef(frame uint8) AltitudeReference {
	switch frame {
	case mavlink.FrameGlobal, mavlink.FrameGlobalInt:
		return AltitudeMSL
	case mavlink.FrameGlobalRelativeAlt, mavlink.FrameGlobalRelativeAltInt:
		return AltitudeRelative
	case mavlink.FrameGlobalTerrainAlt, mavlink.FrameGlobalTerrainAltInt:
		return AltitudeTerrain
	default:
		return AltitudeRelative
	}
}

func altRefToFrame(ref AltitudeReference) uint8 {
	switch ref {
	case AltitudeMSL:
		return mavlink.FrameGlobalInt
	case AltitudeTerrain:
		return mavlink.FrameGlobalTerrainAltInt
	default:
		return mavlink.FrameGlobalRelativeAltInt
	}
}

// waypointFromItem converts one received mission item. E7 fixed point scales
// to degrees; the conversion is lossy below the centimeter level.
func waypointFromItem(item *mavlink.MissionItemInt) Waypoint {
	return Waypoint{
		Command:      item.Command,
		Latitude:     float64(item.X) / 1e7,
		Longitude:    float64(item.Y) / 1e7,
		Altitude:     float64(item.Z),
		AltRef:       frameToAltRef(item.Frame),
		Param1:       item.Param1,
		Param2:       item.Param2,
		Param3:       item.Param3,
		Param4:       item.Param4,
		Current:      item.Current != 0,
		AutoContinue: item.Autocontinue != 0,
	}
}

func itemFromWaypoint(wp Waypoint, seq uint16, target mavlink.Identity) *mavlink.MissionItemInt {
	item := &mavlink.MissionItemInt{
		TargetSystem:    target.SystemID,
		TargetComponent: target.ComponentID,
		Seq:             seq,
		Frame:           altRefToFrame(wp.AltRef),
		Command:         wp.Command,
		Param1:          wp.Param1,
		Param2:          wp.Param2,
		Param3:          wp.Param3,
		Param4:          wp.Param4,
		X:               int32(math.Round(wp.Latitude * 1e7)),
		Y:               int32(math.Round(wp.Longitude * 1e7)),
		Z:               float32(wp.Altitude),
		MissionType:     mavlink.MissionTypeMission,
	}
	if wp.Current {
		item.Current = 1
	}
	if wp.AutoContinue {
		item.Autocontinue = 1
	}
	return item
}
