package param

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/mavlink"
)

var primary = mavlink.Identity{SystemID: 1, ComponentID: 1}

type fakeSender struct {
	mu   sync.Mutex
	sent []mavlink.Message
}

func (s *fakeSender) Send(msg mavlink.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func value(name string, v float32, count uint16) mavlink.Envelope {
	return mavlink.Envelope{
		Msg:        &mavlink.ParamValue{ParamID: name, ParamValue: v, ParamType: mavlink.ParamTypeReal32, ParamCount: count},
		Sender:     primary,
		ReceivedAt: time.Now(),
	}
}

func TestCompletenessIsDistinctCount(t *testing.T) {
	s := NewSync(&fakeSender{}, primary, nil)

	s.Handle(value("RTL_ALT", 30, 3))
	s.Handle(value("WPNAV_SPEED", 500, 3))
	if s.Complete() {
		t.Fatal("complete with 2 of 3 parameters")
	}

	// Duplicates must not count toward completeness.
	s.Handle(value("RTL_ALT", 30, 3))
	if s.Complete() {
		t.Fatal("duplicate pushed catalog to complete")
	}

	s.Handle(value("FENCE_ENABLE", 1, 3))
	if !s.Complete() {
		t.Fatal("catalog not complete with all 3 parameters")
	}

	received, declared := s.Progress()
	if received != 3 || declared != 3 {
		t.Errorf("progress = (%d, %d), want (3, 3)", received, declared)
	}
}

func TestNeverCompleteWithoutDeclaredTotal(t *testing.T) {
	s := NewSync(&fakeSender{}, primary, nil)
	if s.Complete() {
		t.Fatal("complete before any PARAM_VALUE arrived")
	}
}

func TestValuesRoundedToWirePrecision(t *testing.T) {
	s := NewSync(&fakeSender{}, primary, nil)

	s.Handle(value("ANGLE_MAX", 0.1, 1))

	p, ok := s.Get("ANGLE_MAX")
	if !ok {
		t.Fatal("parameter not stored")
	}
	// float32(0.1) widened to float64 carries representation noise; storage
	// must round it away.
	if p.Value != 0.1 {
		t.Errorf("value = %v, want 0.1", p.Value)
	}
}

func TestHandleIgnoresOtherSenders(t *testing.T) {
	s := NewSync(&fakeSender{}, primary, nil)

	env := value("RTL_ALT", 30, 1)
	env.Sender = mavlink.Identity{SystemID: 9, ComponentID: 1}
	s.Handle(env)

	if _, ok := s.Get("RTL_ALT"); ok {
		t.Fatal("parameter accepted from a non-primary sender")
	}
}

func TestSetValidatesNameLength(t *testing.T) {
	s := NewSync(&fakeSender{}, primary, nil)

	err := s.Set(context.Background(), strings.Repeat("X", 17), 1, 0)
	if !enginerr.IsPrecondition(err) {
		t.Fatalf("want PreconditionError for an over-long name, got %v", err)
	}

	if err := s.Set(context.Background(), strings.Repeat("X", 16), 1, 0); err != nil {
		t.Fatalf("16-character name rejected: %v", err)
	}
}

func TestSetDefaultsToReal32(t *testing.T) {
	sender := &fakeSender{}
	s := NewSync(sender, primary, nil)

	if err := s.Set(context.Background(), "RTL_ALT", 45, 0); err != nil {
		t.Fatal(err)
	}

	set := sender.sent[0].(*mavlink.ParamSet)
	if set.ParamType != mavlink.ParamTypeReal32 {
		t.Errorf("param type = %d, want REAL32", set.ParamType)
	}
	if set.TargetSystem != primary.SystemID {
		t.Errorf("target system = %d, want %d", set.TargetSystem, primary.SystemID)
	}
}

func TestAllSortedByName(t *testing.T) {
	s := NewSync(&fakeSender{}, primary, nil)
	s.Handle(value("Z_PARAM", 1, 3))
	s.Handle(value("A_PARAM", 2, 3))
	s.Handle(value("M_PARAM", 3, 3))

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("got %d parameters, want 3", len(all))
	}
	if all[0].Name != "A_PARAM" || all[2].Name != "Z_PARAM" {
		t.Errorf("parameters not sorted: %v", all)
	}
}

func TestLastTracksMostRecent(t *testing.T) {
	s := NewSync(&fakeSender{}, primary, nil)
	s.Handle(value("FIRST", 1, 2))
	s.Handle(value("SECOND", 2, 2))

	name, v := s.Last()
	if name != "SECOND" || v != 2 {
		t.Errorf("last = (%q, %v), want (SECOND, 2)", name, v)
	}
}
