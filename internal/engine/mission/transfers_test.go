package mission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/mavlink"
)

var testTarget = mavlink.Identity{SystemID: 1, ComponentID: 1}

// fakeLink is an in-memory link with a scripted vehicle on the other end.
type fakeLink struct {
	mu     sync.Mutex
	sent   []mavlink.Message
	latest map[string]mavlink.Envelope

	onSend func(msg mavlink.Message)
}

func newFakeLink() *fakeLink {
	return &fakeLink{latest: make(map[string]mavlink.Envelope)}
}

func (l *fakeLink) Send(msg mavlink.Message) error {
	l.mu.Lock()
	l.sent = append(l.sent, msg)
	onSend := l.onSend
	l.mu.Unlock()

	if onSend != nil {
		onSend(msg)
	}
	return nil
}

func (l *fakeLink) Latest(msgType string) (mavlink.Envelope, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	env, ok := l.latest[msgType]
	return env, ok
}

func (l *fakeLink) inject(msg mavlink.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest[msg.Type()] = mavlink.Envelope{
		Msg:        msg,
		Sender:     testTarget,
		ReceivedAt: time.Now(),
	}
}

func (l *fakeLink) sentOfType(msgType string) []mavlink.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []mavlink.Message
	for _, msg := range l.sent {
		if msg.Type() == msgType {
			out = append(out, msg)
		}
	}
	return out
}

func newTestTransfers(link *fakeLink) *Transfers {
	return NewTransfers(link, testTarget, &Options{
		CountInterval:   5 * time.Millisecond,
		ItemInterval:    5 * time.Millisecond,
		PollInterval:    time.Millisecond,
		SessionTimeout:  2 * time.Second,
		DuplicateWindow: 50 * time.Millisecond,
	}, nil)
}

// simVehicle answers download requests for the given stored mission.
func simVehicle(link *fakeLink, items []*mavlink.MissionItemInt) func(mavlink.Message) {
	return func(msg mavlink.Message) {
		switch m := msg.(type) {
		case *mavlink.MissionRequestList:
			link.inject(&mavlink.MissionCount{Count: uint16(len(items)), MissionType: mavlink.MissionTypeMission})
		case *mavlink.MissionRequestInt:
			if int(m.Seq) < len(items) {
				link.inject(items[m.Seq])
			}
		}
	}
}

func storedMission(n int) []*mavlink.MissionItemInt {
	items := make([]*mavlink.MissionItemInt, n)
	for i := range items {
		frame := uint8(mavlink.FrameGlobalRelativeAltInt)
		if i%2 == 1 {
			frame = mavlink.FrameGlobalInt
		}
		items[i] = &mavlink.MissionItemInt{
			Seq:     uint16(i),
			Frame:   frame,
			Command: mavlink.CmdNavWaypoint,
			X:       int32(473977420 + i),
			Y:       int32(85455940 + i),
			Z:       float32(50 + i),
		}
	}
	return items
}

func TestDownload(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"empty mission", 0},
		{"single item", 1},
		{"several items", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := newFakeLink()
			link.onSend = simVehicle(link, storedMission(tt.count))
			tr := newTestTransfers(link)

			var lastProgress float64
			wps, err := tr.Download(context.Background(), func(p float64) { lastProgress = p })
			if err != nil {
				t.Fatalf("download failed: %v", err)
			}
			if len(wps) != tt.count {
				t.Fatalf("got %d waypoints, want %d", len(wps), tt.count)
			}
			if lastProgress != 100 {
				t.Errorf("final progress = %v, want 100", lastProgress)
			}

			// The transfer must close with an accepted ack to the vehicle.
			acks := link.sentOfType("MISSION_ACK")
			if len(acks) != 1 {
				t.Fatalf("sent %d final acks, want 1", len(acks))
			}
			if ack := acks[0].(*mavlink.MissionAck); ack.Result != mavlink.MissionAccepted {
				t.Errorf("final ack result = %d, want accepted", ack.Result)
			}

			for i, wp := range wps {
				wantRef := AltitudeRelative
				if i%2 == 1 {
					wantRef = AltitudeMSL
				}
				if wp.AltRef != wantRef {
					t.Errorf("waypoint %d altitude reference = %q, want %q", i, wp.AltRef, wantRef)
				}
			}
		})
	}
}

// A count retained from a previous session must not satisfy a new download.
func TestDownloadIgnoresStaleCount(t *testing.T) {
	link := newFakeLink()
	link.mu.Lock()
	link.latest["MISSION_COUNT"] = mavlink.Envelope{
		Msg:        &mavlink.MissionCount{Count: 3},
		Sender:     testTarget,
		ReceivedAt: time.Now().Add(-time.Minute),
	}
	link.mu.Unlock()

	tr := NewTransfers(link, testTarget, &Options{
		CountInterval:  5 * time.Millisecond,
		PollInterval:   time.Millisecond,
		SessionTimeout: 100 * time.Millisecond,
	}, nil)

	_, err := tr.Download(context.Background(), nil)
	if !enginerr.IsTimeout(err) {
		t.Fatalf("want TimeoutError, got %v", err)
	}
}

func TestDownloadBusy(t *testing.T) {
	tr := newTestTransfers(newFakeLink())
	tr.downloadBusy.Store(true)

	_, err := tr.Download(context.Background(), nil)
	if !enginerr.IsPrecondition(err) {
		t.Fatalf("want PreconditionError, got %v", err)
	}
}

// simGCS drives an upload from the vehicle side: request each item in turn,
// then ack the transfer.
func simUploadVehicle(link *fakeLink, result uint8) func(mavlink.Message) {
	return func(msg mavlink.Message) {
		switch m := msg.(type) {
		case *mavlink.MissionCount:
			if m.Count == 0 {
				link.inject(&mavlink.MissionAck{Result: result})
				return
			}
			link.inject(&mavlink.MissionRequestInt{Seq: 0})
		case *mavlink.MissionItemInt:
			next := m.Seq + 1
			total := 0
			for _, s := range link.sentOfType("MISSION_COUNT") {
				total = int(s.(*mavlink.MissionCount).Count)
			}
			if int(next) < total {
				link.inject(&mavlink.MissionRequestInt{Seq: next})
			} else {
				link.inject(&mavlink.MissionAck{Result: result})
			}
		}
	}
}

func waypoints(n int) []Waypoint {
	wps := make([]Waypoint, n)
	for i := range wps {
		wps[i] = Waypoint{
			Command:   mavlink.CmdNavWaypoint,
			Latitude:  47.3977420,
			Longitude: 8.5455940,
			Altitude:  float64(30 + i),
			AltRef:    AltitudeRelative,
		}
	}
	return wps
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"empty mission", 0},
		{"single item", 1},
		{"several items", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := newFakeLink()
			link.onSend = simUploadVehicle(link, mavlink.MissionAccepted)
			tr := newTestTransfers(link)

			if err := tr.Upload(context.Background(), waypoints(tt.count), nil); err != nil {
				t.Fatalf("upload failed: %v", err)
			}

			items := link.sentOfType("MISSION_ITEM_INT")
			if len(items) != tt.count {
				t.Fatalf("sent %d items, want %d", len(items), tt.count)
			}
			for i, msg := range items {
				if item := msg.(*mavlink.MissionItemInt); int(item.Seq) != i {
					t.Errorf("item %d sent with seq %d", i, item.Seq)
				}
			}
		})
	}
}

func TestUploadRejectedByVehicle(t *testing.T) {
	link := newFakeLink()
	link.onSend = simUploadVehicle(link, mavlink.MissionDenied)
	tr := newTestTransfers(link)

	err := tr.Upload(context.Background(), waypoints(2), nil)
	if !enginerr.IsRejected(err) {
		t.Fatalf("want RejectedError, got %v", err)
	}
}

func TestUploadTimesOutWhenVehicleGoesQuiet(t *testing.T) {
	link := newFakeLink()
	tr := NewTransfers(link, testTarget, &Options{
		PollInterval:   time.Millisecond,
		SessionTimeout: 100 * time.Millisecond,
	}, nil)

	err := tr.Upload(context.Background(), waypoints(3), nil)
	if !enginerr.IsTimeout(err) {
		t.Fatalf("want TimeoutError, got %v", err)
	}
}

// A retransmitted item request inside the duplicate window is answered once.
func TestUploadDuplicateRequestAnsweredOnce(t *testing.T) {
	link := newFakeLink()
	tr := newTestTransfers(link)
	u := newUpload(tr, waypoints(3), noProgress)

	link.inject(&mavlink.MissionRequestInt{Seq: 0})
	if err := u.handleItemRequest(context.Background()); err != nil {
		t.Fatal(err)
	}
	link.inject(&mavlink.MissionRequestInt{Seq: 0})
	if err := u.handleItemRequest(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := len(link.sentOfType("MISSION_ITEM_INT")); got != 1 {
		t.Fatalf("sent %d items for a duplicate request, want 1", got)
	}
}

func TestUploadIgnoresOutOfRangeRequest(t *testing.T) {
	link := newFakeLink()
	tr := newTestTransfers(link)
	u := newUpload(tr, waypoints(2), noProgress)

	link.inject(&mavlink.MissionRequestInt{Seq: 9})
	if err := u.handleItemRequest(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := len(link.sentOfType("MISSION_ITEM_INT")); got != 0 {
		t.Fatalf("sent %d items for an out-of-range request, want 0", got)
	}
}

func TestUploadBusy(t *testing.T) {
	tr := newTestTransfers(newFakeLink())
	tr.uploadBusy.Store(true)

	err := tr.Upload(context.Background(), waypoints(1), nil)
	if !enginerr.IsPrecondition(err) {
		t.Fatalf("want PreconditionError, got %v", err)
	}
}
