package mavlink

// MAV_TYPE vehicle classes the engine recognizes.
const (
	TypeFixedWing  = 1
	TypeQuadrotor  = 2
	TypeSubmarine  = 12
	TypeGroundRover = 10
)

// MAV_AUTOPILOT values.
const (
	AutopilotGeneric   = 0
	AutopilotArduPilot = 3
	AutopilotPX4       = 12
)

// MAV_MODE_FLAG bits of Heartbeat.BaseMode.
const (
	ModeFlagCustomModeEnabled = 1
	ModeFlagSafetyArmed       = 128
)

// MAV_STATE values of Heartbeat.SystemStatus.
const (
	StateUninit   = 0
	StateBoot     = 1
	StateStandby  = 3
	StateActive   = 4
	StateCritical = 5
)

// MAV_RESULT codes carried by COMMAND_ACK.
const (
	ResultAccepted           = 0
	ResultTemporarilyRejected = 1
	ResultDenied             = 2
	ResultUnsupported        = 3
	ResultFailed             = 4
	ResultInProgress         = 5
)

// MAV_CMD command kinds used by the engine.
const (
	CmdNavWaypoint        = 16
	CmdNavLand            = 21
	CmdNavTakeoff         = 22
	CmdNavReturnToLaunch  = 20
	CmdDoSetMode          = 176
	CmdMissionStart       = 300
	CmdComponentArmDisarm = 400
	CmdSetMessageInterval = 511
)

// MAV_FRAME coordinate frames for mission items.
const (
	FrameGlobal            = 0
	FrameGlobalRelativeAlt = 3
	FrameGlobalInt         = 5
	FrameGlobalRelativeAltInt = 6
	FrameGlobalTerrainAlt  = 10
	FrameGlobalTerrainAltInt = 11
)

// MAV_MISSION_RESULT codes carried by MISSION_ACK.
const (
	MissionAccepted     = 0
	MissionError        = 1
	MissionInvalidSeq   = 13
	MissionDenied       = 14
	MissionOperationCancelled = 15
)

// MAV_MISSION_TYPE values.
const (
	MissionTypeMission = 0
	MissionTypeFence   = 1
	MissionTypeRally   = 2
)

// MAV_PARAM_TYPE values.
const (
	ParamTypeUint8  = 1
	ParamTypeInt8   = 2
	ParamTypeUint16 = 3
	ParamTypeInt16  = 4
	ParamTypeUint32 = 5
	ParamTypeInt32  = 6
	ParamTypeReal32 = 9
)

// GPS_FIX_TYPE values of GpsRawInt.FixType.
const (
	FixNone    = 1
	Fix2D      = 2
	Fix3D      = 3
	FixDGPS    = 4
	FixRTKFloat = 5
	FixRTKFixed = 6
)

// HeadingUnknown is the GLOBAL_POSITION_INT.Hdg sentinel for "not available".
const HeadingUnknown = 65535

// CurrentUnknown is the SYS_STATUS.CurrentBattery sentinel for "not measured".
const CurrentUnknown = -1
