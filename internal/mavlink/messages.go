package mavlink

import "time"

// Message is one decoded protocol message. The wire framing and field
// encoding live behind the Codec; the engine only ever sees these typed
// structs.
type Message interface {
	// Type returns the catalog name of the message, e.g. "HEARTBEAT".
	Type() string
}

// Identity is a (system id, component id) pair identifying one sender on the
// link. The zero component id addresses all components of a system.
type Identity struct {
	SystemID    uint8 `json:"systemId"`
	ComponentID uint8 `json:"componentId"`
}

// Envelope tags a decoded inbound message with its sender identity and
// arrival timestamp. The timestamp is the logical clock used to reject
// replies belonging to superseded operations.
type Envelope struct {
	Msg        Message
	Sender     Identity
	ReceivedAt time.Time
}

// Heartbeat announces vehicle presence, type and flight mode.
type Heartbeat struct {
	VehicleType  uint8  `json:"type"`
	Autopilot    uint8  `json:"autopilot"`
	BaseMode     uint8  `json:"baseMode"`
	CustomMode   uint32 `json:"customMode"`
	SystemStatus uint8  `json:"systemStatus"`
}

func (Heartbeat) Type() string { return "HEARTBEAT" }

// SysStatus carries power and load figures.
// VoltageBattery is in mV, CurrentBattery in cA (-1 when not measured),
// Load in tenths of a percent.
type SysStatus struct {
	Load             uint16 `json:"load"`
	VoltageBattery   uint16 `json:"voltageBattery"`
	CurrentBattery   int16  `json:"currentBattery"`
	BatteryRemaining int8   `json:"batteryRemaining"`
}

func (SysStatus) Type() string { return "SYS_STATUS" }

// Attitude carries body attitude in radians and angular rates in rad/s.
type Attitude struct {
	TimeBootMs uint32  `json:"timeBootMs"`
	Roll       float32 `json:"roll"`
	Pitch      float32 `json:"pitch"`
	Yaw        float32 `json:"yaw"`
	RollSpeed  float32 `json:"rollSpeed"`
	PitchSpeed float32 `json:"pitchSpeed"`
	YawSpeed   float32 `json:"yawSpeed"`
}

func (Attitude) Type() string { return "ATTITUDE" }

// GlobalPositionInt is the fused position estimate. Lat/Lon are degrees in E7
// fixed point, altitudes in mm, velocities in cm/s, heading in cdeg (UINT16_MAX
// when unknown).
type GlobalPositionInt struct {
	TimeBootMs  uint32 `json:"timeBootMs"`
	Lat         int32  `json:"lat"`
	Lon         int32  `json:"lon"`
	Alt         int32  `json:"alt"`
	RelativeAlt int32  `json:"relativeAlt"`
	Vx          int16  `json:"vx"`
	Vy          int16  `json:"vy"`
	Vz          int16  `json:"vz"`
	Hdg         uint16 `json:"hdg"`
}

func (GlobalPositionInt) Type() string { return "GLOBAL_POSITION_INT" }

// GpsRawInt is the raw GNSS solution.
type GpsRawInt struct {
	FixType           uint8  `json:"fixType"`
	Lat               int32  `json:"lat"`
	Lon               int32  `json:"lon"`
	Alt               int32  `json:"alt"`
	Eph               uint16 `json:"eph"`
	Epv               uint16 `json:"epv"`
	SatellitesVisible uint8  `json:"satellitesVisible"`
}

func (GpsRawInt) Type() string { return "GPS_RAW_INT" }

// VfrHud carries the pilot HUD figures in SI units.
type VfrHud struct {
	Airspeed    float32 `json:"airspeed"`
	Groundspeed float32 `json:"groundspeed"`
	Heading     int16   `json:"heading"`
	Throttle    uint16  `json:"throttle"`
	Alt         float32 `json:"alt"`
	Climb       float32 `json:"climb"`
}

func (VfrHud) Type() string { return "VFR_HUD" }

// StatusText is a free-form firmware status message.
type StatusText struct {
	Severity uint8  `json:"severity"`
	Text     string `json:"text"`
}

func (StatusText) Type() string { return "STATUSTEXT" }

// BatteryStatus reports one battery pack. Id distinguishes packs when a
// vehicle carries several; Voltages are per-cell mV; CurrentBattery is cA.
type BatteryStatus struct {
	ID               uint8    `json:"id"`
	Voltages         []uint16 `json:"voltages"`
	CurrentBattery   int16    `json:"currentBattery"`
	BatteryRemaining int8     `json:"batteryRemaining"`
}

func (BatteryStatus) Type() string { return "BATTERY_STATUS" }

// CommandLong issues one command with up to seven parameters.
type CommandLong struct {
	TargetSystem    uint8   `json:"targetSystem"`
	TargetComponent uint8   `json:"targetComponent"`
	Command         uint16  `json:"command"`
	Confirmation    uint8   `json:"confirmation"`
	Param1          float32 `json:"param1"`
	Param2          float32 `json:"param2"`
	Param3          float32 `json:"param3"`
	Param4          float32 `json:"param4"`
	Param5          float32 `json:"param5"`
	Param6          float32 `json:"param6"`
	Param7          float32 `json:"param7"`
}

func (CommandLong) Type() string { return "COMMAND_LONG" }

// CommandAck reports the outcome of a previously received command. The
// catalog carries no correlation id; acks match sends by Command only.
type CommandAck struct {
	Command uint16 `json:"command"`
	Result  uint8  `json:"result"`
}

func (CommandAck) Type() string { return "COMMAND_ACK" }

// SetMode requests a flight-mode change using the vehicle's custom mode
// numbering.
type SetMode struct {
	TargetSystem uint8  `json:"targetSystem"`
	BaseMode     uint8  `json:"baseMode"`
	CustomMode   uint32 `json:"customMode"`
}

func (SetMode) Type() string { return "SET_MODE" }

// MissionRequestList asks the vehicle for the number of stored mission items.
type MissionRequestList struct {
	TargetSystem    uint8 `json:"targetSystem"`
	TargetComponent uint8 `json:"targetComponent"`
	MissionType     uint8 `json:"missionType"`
}

func (MissionRequestList) Type() string { return "MISSION_REQUEST_LIST" }

// MissionCount declares the number of items in a mission transfer.
type MissionCount struct {
	TargetSystem    uint8  `json:"targetSystem"`
	TargetComponent uint8  `json:"targetComponent"`
	Count           uint16 `json:"count"`
	MissionType     uint8  `json:"missionType"`
}

func (MissionCount) Type() string { return "MISSION_COUNT" }

// MissionRequestInt asks for one mission item by sequence number.
type MissionRequestInt struct {
	TargetSystem    uint8  `json:"targetSystem"`
	TargetComponent uint8  `json:"targetComponent"`
	Seq             uint16 `json:"seq"`
	MissionType     uint8  `json:"missionType"`
}

func (MissionRequestInt) Type() string { return "MISSION_REQUEST_INT" }

// MissionItemInt is one mission step. X/Y are degrees in E7 fixed point
// for global frames, Z is meters in the frame's altitude reference.
type MissionItemInt struct {
	TargetSystem    uint8   `json:"targetSystem"`
	TargetComponent uint8   `json:"targetComponent"`
	Seq             uint16  `json:"seq"`
	Frame           uint8   `json:"frame"`
	Command         uint16  `json:"command"`
	Current         uint8   `json:"current"`
	Autocontinue    uint8   `json:"autocontinue"`
	Param1          float32 `json:"param1"`
	Param2          float32 `json:"param2"`
	Param3          float32 `json:"param3"`
	Param4          float32 `json:"param4"`
	X               int32   `json:"x"`
	Y               int32   `json:"y"`
	Z               float32 `json:"z"`
	MissionType     uint8   `json:"missionType"`
}

func (MissionItemInt) Type() string { return "MISSION_ITEM_INT" }

// MissionAck terminates a mission transfer with a result code.
type MissionAck struct {
	TargetSystem    uint8 `json:"targetSystem"`
	TargetComponent uint8 `json:"targetComponent"`
	Result          uint8 `json:"type"`
	MissionType     uint8 `json:"missionType"`
}

func (MissionAck) Type() string { return "MISSION_ACK" }

// ParamRequestList asks the vehicle to stream its full parameter catalog.
type ParamRequestList struct {
	TargetSystem    uint8 `json:"targetSystem"`
	TargetComponent uint8 `json:"targetComponent"`
}

func (ParamRequestList) Type() string { return "PARAM_REQUEST_LIST" }

// ParamValue carries one named parameter together with the declared catalog
// size and this parameter's index within it.
type ParamValue struct {
	ParamID    string  `json:"paramId"`
	ParamValue float32 `json:"paramValue"`
	ParamType  uint8   `json:"paramType"`
	ParamCount uint16  `json:"paramCount"`
	ParamIndex uint16  `json:"paramIndex"`
}

func (ParamValue) Type() string { return "PARAM_VALUE" }

// ParamSet writes one named parameter. The vehicle confirms by emitting a
// PARAM_VALUE for the same name.
type ParamSet struct {
	TargetSystem    uint8   `json:"targetSystem"`
	TargetComponent uint8   `json:"targetComponent"`
	ParamID         string  `json:"paramId"`
	ParamValue      float32 `json:"paramValue"`
	ParamType       uint8   `json:"paramType"`
}

func (ParamSet) Type() string { return "PARAM_SET" }
