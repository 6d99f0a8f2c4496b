package mavlink

// messageIDs maps catalog type names to their numeric wire ids, needed by
// MAV_CMD_SET_MESSAGE_INTERVAL which addresses messages by number.
var messageIDs = map[string]uint32{
	"HEARTBEAT":            0,
	"SYS_STATUS":           1,
	"PARAM_VALUE":          22,
	"GPS_RAW_INT":          24,
	"ATTITUDE":             30,
	"GLOBAL_POSITION_INT":  33,
	"MISSION_ITEM_INT":     73,
	"VFR_HUD":              74,
	"BATTERY_STATUS":       147,
	"STATUSTEXT":           253,
}

// MessageID resolves a catalog type name to its numeric id.
func MessageID(typeName string) (uint32, bool) {
	id, ok := messageIDs[typeName]
	return id, ok
}
