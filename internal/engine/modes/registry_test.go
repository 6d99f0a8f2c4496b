package modes

import (
	"context"
	"testing"

	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/engine/firmware"
	"github.com/groundlink-io/groundlink/internal/mavlink"
)

func TestInvokeUnknownAction(t *testing.T) {
	r := NewRegistry(nil)

	err := r.Invoke(context.Background(), "levitate")
	if !enginerr.IsPrecondition(err) {
		t.Fatalf("want PreconditionError, got %v", err)
	}
}

func TestInvokeDeclaredButUnbound(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("takeoff")

	err := r.Invoke(context.Background(), "takeoff")
	if !enginerr.IsPrecondition(err) {
		t.Fatalf("want PreconditionError for unbound action, got %v", err)
	}
	if r.Bound("takeoff") {
		t.Error("unbound action reported as bound")
	}
}

func TestBindAndInvoke(t *testing.T) {
	r := NewRegistry(nil)

	invoked := false
	r.Bind("arm", func(ctx context.Context) error {
		invoked = true
		return nil
	})

	if err := r.Invoke(context.Background(), "arm"); err != nil {
		t.Fatal(err)
	}
	if !invoked {
		t.Fatal("bound action did not run")
	}
}

func TestNamesKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("arm")
	r.Register("takeoff")
	r.Register("arm") // duplicate declaration is a no-op
	r.Bind("land", func(ctx context.Context) error { return nil })

	names := r.Names()
	want := []string{"arm", "takeoff", "land"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestBindModesSkipsInternal(t *testing.T) {
	r := NewRegistry(nil)

	var requested []string
	r.BindModes(firmware.ArduPilot{}, mavlink.TypeQuadrotor, func(ctx context.Context, name string) error {
		requested = append(requested, name)
		return nil
	})

	if r.Bound("INITIALISING") {
		t.Error("internal mode registered as an action")
	}
	if !r.Bound("GUIDED") || !r.Bound("RTL") {
		t.Error("flight modes not bound")
	}

	if err := r.Invoke(context.Background(), "LOITER"); err != nil {
		t.Fatal(err)
	}
	if len(requested) != 1 || requested[0] != "LOITER" {
		t.Errorf("mode action requested %v, want [LOITER]", requested)
	}
}

// Each bound mode action must capture its own mode, not the loop variable.
func TestBindModesCapturesEachMode(t *testing.T) {
	r := NewRegistry(nil)

	var requested string
	r.BindModes(firmware.Generic{}, mavlink.TypeQuadrotor, func(ctx context.Context, name string) error {
		requested = name
		return nil
	})

	if err := r.Invoke(context.Background(), "MANUAL"); err != nil {
		t.Fatal(err)
	}
	if requested != "MANUAL" {
		t.Errorf("invoked MANUAL but %q was requested", requested)
	}
}
