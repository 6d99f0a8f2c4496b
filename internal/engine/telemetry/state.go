// Package telemetry mirrors the continuous telemetry stream into a typed,
// normalized vehicle state. All unit conversions happen at this boundary so
// the rest of the application only ever sees degrees, meters, volts and amps.
package telemetry

import (
	"sync"
	"time"
)

// Group names one logical slice of vehicle state. The mirror raises exactly
// one change notification per updated group per message.
type Group string

const (
	GroupAttitude   Group = "attitude"
	GroupPosition   Group = "position"
	GroupAltitude   Group = "altitude"
	GroupGPS        Group = "gps"
	GroupPower      Group = "power"
	GroupArmState   Group = "armstate"
	GroupCPULoad    Group = "cpuload"
	GroupParameter  Group = "parameter"
	GroupStatusText Group = "statustext"
	GroupMode       Group = "mode"
)

// Snapshot is a copy of the vehicle state at one instant, JSON-ready for the
// status endpoint.
type Snapshot struct {
	VehicleType  uint8  `json:"vehicleType"`
	Autopilot    uint8  `json:"autopilot"`
	Armed        bool   `json:"armed"`
	Mode         string `json:"mode"`
	SystemStatus uint8  `json:"systemStatus"`

	Roll      float64 `json:"roll"`
	Pitch     float64 `json:"pitch"`
	Yaw       float64 `json:"yaw"`
	RollRate  float64 `json:"rollRate"`
	PitchRate float64 `json:"pitchRate"`
	YawRate   float64 `json:"yawRate"`

	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	AltitudeMSL float64  `json:"altitudeMsl"`
	AltitudeRel float64  `json:"altitudeRel"`
	VelocityX   float64  `json:"velocityX"`
	VelocityY   float64  `json:"velocityY"`
	VelocityZ   float64  `json:"velocityZ"`
	Heading     *float64 `json:"heading,omitempty"`

	GPSFix     uint8  `json:"gpsFix"`
	Satellites uint8  `json:"satellites"`
	HDOP       uint16 `json:"hdop"`
	VDOP       uint16 `json:"vdop"`

	Voltage          float64  `json:"voltage"`
	Current          *float64 `json:"current,omitempty"`
	BatteryRemaining int8     `json:"batteryRemaining"`

	CPULoad float64 `json:"cpuLoad"`

	LastParamName  string  `json:"lastParamName"`
	LastParamValue float64 `json:"lastParamValue"`

	StatusText     string `json:"statusText"`
	StatusSeverity uint8  `json:"statusSeverity"`

	LastHeartbeat time.Time `json:"lastHeartbeat"`
}

// State is the mutable vehicle state record. It is mutated only by the
// Mirror; everything else reads through the accessors.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewState() *State {
	return &State{
		snap: Snapshot{Mode: "unknown"},
	}
}

// Snapshot returns a consistent copy of the full state. The optional fields
// (heading, current) are deep-copied so callers never alias internal memory.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.snap
	if s.snap.Heading != nil {
		h := *s.snap.Heading
		out.Heading = &h
	}
	if s.snap.Current != nil {
		c := *s.snap.Current
		out.Current = &c
	}
	return out
}

// Attitude returns roll, pitch and yaw in degrees.
func (s *State) Attitude() (roll, pitch, yaw float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Roll, s.snap.Pitch, s.snap.Yaw
}

// Position returns latitude and longitude in degrees.
func (s *State) Position() (lat, lon float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Latitude, s.snap.Longitude
}

// Altitude returns MSL and home-relative altitude in meters.
func (s *State) Altitude() (msl, rel float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.AltitudeMSL, s.snap.AltitudeRel
}

// Heading returns the course over ground in degrees. ok is false while the
// vehicle reports heading as unavailable.
func (s *State) Heading() (deg float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.Heading == nil {
		return 0, false
	}
	return *s.snap.Heading, true
}

// Battery returns voltage in volts and, when measured, current in amps.
func (s *State) Battery() (voltage float64, current *float64, remaining int8) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.Current != nil {
		c := *s.snap.Current
		return s.snap.Voltage, &c, s.snap.BatteryRemaining
	}
	return s.snap.Voltage, nil, s.snap.BatteryRemaining
}

// Armed reports the motor-arm flag from the last heartbeat.
func (s *State) Armed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Armed
}

// Mode returns the resolved flight mode name, "unknown" when the mode number
// is not in the firmware's table.
func (s *State) Mode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Mode
}

// VehicleType returns the MAV_TYPE from the last heartbeat.
func (s *State) VehicleType() uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.VehicleType
}

// LastHeartbeat returns the arrival time of the most recent heartbeat.
func (s *State) LastHeartbeat() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.LastHeartbeat
}

// GPS returns fix type and satellite count.
func (s *State) GPS() (fix uint8, satellites uint8) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.GPSFix, s.snap.Satellites
}

func (s *State) update(fn func(snap *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
}
