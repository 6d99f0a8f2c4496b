package mavlink

import (
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := JSONCodec{}
	from := Identity{SystemID: 1, ComponentID: 1}

	frame, err := codec.Encode(&Heartbeat{
		VehicleType: TypeQuadrotor,
		Autopilot:   AutopilotArduPilot,
		BaseMode:    ModeFlagCustomModeEnabled,
		CustomMode:  4,
	}, from)
	if err != nil {
		t.Fatal(err)
	}

	msg, sender, err := codec.Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if sender != from {
		t.Errorf("sender = %+v, want %+v", sender, from)
	}

	hb, ok := msg.(*Heartbeat)
	if !ok {
		t.Fatalf("decoded %T, want *Heartbeat", msg)
	}
	if hb.VehicleType != TypeQuadrotor || hb.CustomMode != 4 {
		t.Errorf("decoded heartbeat = %+v", hb)
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, _, err := JSONCodec{}.Decode([]byte(`{"type":"NOT_IN_CATALOG","systemId":1,"componentId":1}`))
	if err == nil {
		t.Fatal("unknown type decoded")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := JSONCodec{}.Decode([]byte("{{{"))
	if err == nil {
		t.Fatal("garbage decoded")
	}
}

func TestRegisterMessageExtendsCatalog(t *testing.T) {
	RegisterMessage("TEST_DIALECT_MSG", func() Message { return &StatusText{} })

	msg, _, err := JSONCodec{}.Decode([]byte(`{"type":"TEST_DIALECT_MSG","systemId":1,"componentId":1,"payload":{"text":"hi"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.(*StatusText).Text != "hi" {
		t.Errorf("payload not decoded: %+v", msg)
	}
}

func TestMessageIDCatalog(t *testing.T) {
	id, ok := MessageID("ATTITUDE")
	if !ok || id != 30 {
		t.Errorf("MessageID(ATTITUDE) = %d (%v), want 30", id, ok)
	}
	if _, ok := MessageID("NO_SUCH_MESSAGE"); ok {
		t.Error("unknown message type resolved to an id")
	}
}
