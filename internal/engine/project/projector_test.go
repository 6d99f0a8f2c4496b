package project

import (
	"testing"
	"time"

	"github.com/groundlink-io/groundlink/internal/datalake"
	"github.com/groundlink-io/groundlink/internal/mavlink"
)

var primary = mavlink.Identity{SystemID: 1, ComponentID: 1}

func envelope(msg mavlink.Message, sender mavlink.Identity) mavlink.Envelope {
	return mavlink.Envelope{Msg: msg, Sender: sender, ReceivedAt: time.Now()}
}

func TestProjectScalarFields(t *testing.T) {
	store := datalake.NewMemStore()
	p := NewProjector(store, primary, nil)

	p.Handle(envelope(&mavlink.VfrHud{Airspeed: 12.5, Throttle: 55}, primary))

	tests := []struct {
		path string
		want any
	}{
		{"/mavlink/1/1/VFR_HUD/airspeed", 12.5},
		{"/mavlink/1/1/VFR_HUD/throttle", float64(55)},
		{"/mavlink/VFR_HUD/airspeed", 12.5}, // legacy alias of the primary identity
	}
	for _, tt := range tests {
		got, ok := store.GetValue(tt.path)
		if !ok {
			t.Errorf("%s not projected", tt.path)
			continue
		}
		if got != tt.want {
			t.Errorf("%s = %v, want %v", tt.path, got, tt.want)
		}
	}
}

// Non-primary senders project only under their identity-scoped prefix.
func TestProjectForeignSenderHasNoAlias(t *testing.T) {
	store := datalake.NewMemStore()
	p := NewProjector(store, primary, nil)

	other := mavlink.Identity{SystemID: 7, ComponentID: 1}
	p.Handle(envelope(&mavlink.VfrHud{Airspeed: 3}, other))

	if _, ok := store.GetValue("/mavlink/7/1/VFR_HUD/airspeed"); !ok {
		t.Error("scoped path not projected for foreign sender")
	}
	if _, ok := store.GetValue("/mavlink/VFR_HUD/airspeed"); ok {
		t.Error("foreign sender leaked into the primary alias namespace")
	}
}

// Re-projecting the same message type must not register variables twice and
// must overwrite values in place.
func TestProjectIdempotentRegistration(t *testing.T) {
	store := datalake.NewMemStore()
	p := NewProjector(store, primary, nil)

	p.Handle(envelope(&mavlink.VfrHud{Airspeed: 1}, primary))
	count := store.VariableCount()

	p.Handle(envelope(&mavlink.VfrHud{Airspeed: 2}, primary))
	if store.VariableCount() != count {
		t.Errorf("variable count grew from %d to %d on re-projection", count, store.VariableCount())
	}

	got, _ := store.GetValue("/mavlink/1/1/VFR_HUD/airspeed")
	if got != 2.0 {
		t.Errorf("airspeed = %v, want 2", got)
	}
}

// batteryReport is a synthetic message with an array of identified records.
type batteryReport struct {
	Batteries []batteryCell `json:"batteries"`
}

type batteryCell struct {
	ID      int     `json:"id"`
	Voltage float64 `json:"voltage"`
}

func (batteryReport) Type() string { return "BATTERY_REPORT" }

func TestProjectIdentifiedArrays(t *testing.T) {
	store := datalake.NewMemStore()
	p := NewProjector(store, primary, nil)

	p.Handle(envelope(&batteryReport{
		Batteries: []batteryCell{
			{ID: 0, Voltage: 12.1},
			{ID: 1, Voltage: 11.9},
		},
	}, primary))

	first, ok := store.GetValue("/mavlink/1/1/BATTERY_REPORT/batteries/id=0/voltage")
	if !ok || first != 12.1 {
		t.Errorf("battery 0 voltage = %v (%v), want 12.1", first, ok)
	}
	second, ok := store.GetValue("/mavlink/1/1/BATTERY_REPORT/batteries/id=1/voltage")
	if !ok || second != 11.9 {
		t.Errorf("battery 1 voltage = %v (%v), want 11.9", second, ok)
	}
}

// Arrays without a declared identifier field must be skipped, not flattened
// by index.
func TestProjectSkipsUnidentifiedArrays(t *testing.T) {
	store := datalake.NewMemStore()
	p := NewProjector(store, primary, nil)

	p.Handle(envelope(&mavlink.BatteryStatus{ID: 0, Voltages: []uint16{3700, 3700}}, primary))

	if _, ok := store.GetValue("/mavlink/1/1/BATTERY_STATUS/voltages/0"); ok {
		t.Error("unidentified array projected by index")
	}
	if _, ok := store.GetValue("/mavlink/1/1/BATTERY_STATUS/id"); !ok {
		t.Error("sibling scalar fields must still project")
	}
}
