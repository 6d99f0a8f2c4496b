package mavlink

import (
	"encoding/json"
	"fmt"
)

// Codec maps discrete link frames to decoded messages and back. The binary
// wire encoding is owned by whatever bridges the link; the engine only
// requires that frames arrive one whole message at a time.
type Codec interface {
	Decode(frame []byte) (Message, Identity, error)
	Encode(msg Message, from Identity) ([]byte, error)
}

// frame is the JSON envelope used by the bridged link and the test harness.
type frame struct {
	Type        string          `json:"type"`
	SystemID    uint8           `json:"systemId"`
	ComponentID uint8           `json:"componentId"`
	Payload     json.RawMessage `json:"payload"`
}

// catalog maps message type names to payload constructors. RegisterMessage
// extends it for firmware-specific dialects.
var catalog = map[string]func() Message{}

// RegisterMessage adds a message constructor to the decode catalog.
// Registering an already known type name replaces the previous constructor.
func RegisterMessage(name string, ctor func() Message) {
	catalog[name] = ctor
}

func init() {
	RegisterMessage("HEARTBEAT", func() Message { return &Heartbeat{} })
	RegisterMessage("SYS_STATUS", func() Message { return &SysStatus{} })
	RegisterMessage("ATTITUDE", func() Message { return &Attitude{} })
	RegisterMessage("GLOBAL_POSITION_INT", func() Message { return &GlobalPositionInt{} })
	RegisterMessage("GPS_RAW_INT", func() Message { return &GpsRawInt{} })
	RegisterMessage("VFR_HUD", func() Message { return &VfrHud{} })
	RegisterMessage("STATUSTEXT", func() Message { return &StatusText{} })
	RegisterMessage("BATTERY_STATUS", func() Message { return &BatteryStatus{} })
	RegisterMessage("COMMAND_LONG", func() Message { return &CommandLong{} })
	RegisterMessage("COMMAND_ACK", func() Message { return &CommandAck{} })
	RegisterMessage("SET_MODE", func() Message { return &SetMode{} })
	RegisterMessage("MISSION_REQUEST_LIST", func() Message { return &MissionRequestList{} })
	RegisterMessage("MISSION_COUNT", func() Message { return &MissionCount{} })
	RegisterMessage("MISSION_REQUEST_INT", func() Message { return &MissionRequestInt{} })
	RegisterMessage("MISSION_ITEM_INT", func() Message { return &MissionItemInt{} })
	RegisterMessage("MISSION_ACK", func() Message { return &MissionAck{} })
	RegisterMessage("PARAM_REQUEST_LIST", func() Message { return &ParamRequestList{} })
	RegisterMessage("PARAM_VALUE", func() Message { return &ParamValue{} })
	RegisterMessage("PARAM_SET", func() Message { return &ParamSet{} })
}

// JSONCodec encodes messages as JSON envelopes carrying the type name and
// sender identity. It is the codec of the MQTT-bridged link and of the tests.
type JSONCodec struct{}

var _ Codec = (*JSONCodec)(nil)

func (JSONCodec) Decode(raw []byte) (Message, Identity, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, Identity{}, fmt.Errorf("undecodable frame: %w", err)
	}

	ctor, ok := catalog[f.Type]
	if !ok {
		return nil, Identity{}, fmt.Errorf("unknown message type %q", f.Type)
	}

	msg := ctor()
	if len(f.Payload) > 0 {
		if err := json.Unmarshal(f.Payload, msg); err != nil {
			return nil, Identity{}, fmt.Errorf("bad %s payload: %w", f.Type, err)
		}
	}

	return msg, Identity{SystemID: f.SystemID, ComponentID: f.ComponentID}, nil
}

func (JSONCodec) Encode(msg Message, from Identity) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	return json.Marshal(frame{
		Type:        msg.Type(),
		SystemID:    from.SystemID,
		ComponentID: from.ComponentID,
		Payload:     payload,
	})
}
