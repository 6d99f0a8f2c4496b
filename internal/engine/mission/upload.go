package mission

import (
	"context"
	"time"

	"github.com/looplab/fsm"

	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/internal/pkg/metrics"
	fsmutil "github.com/groundlink-io/groundlink/internal/pkg/util/fsm"
)

// Upload states.
const (
	StateSendingCount         = "sending_count"
	StateAwaitingItemRequests = "awaiting_item_requests"
	StateAwaitingFinalAck     = "awaiting_final_ack"
)

// Upload events.
const (
	eventCountSent    = "count_sent"
	eventLastItemSent = "last_item_sent"
	eventAckAccepted  = "ack_accepted"
)

type upload struct {
	t        *Transfers
	sess     *session
	wps      []Waypoint
	progress ProgressFunc
	machine  *fsm.FSM

	answered         map[uint16]time.Time
	highestRequested int
	lastRequestSeen  time.Time
}

func newUpload(t *Transfers, wps []Waypoint, progress ProgressFunc) *upload {
	u := &upload{
		t:                t,
		sess:             &session{startedAt: t.now(), expectedCount: len(wps)},
		wps:              wps,
		progress:         progress,
		answered:         make(map[uint16]time.Time),
		highestRequested: -1,
	}
	u.sess.lastProgressAt = u.sess.startedAt

	events := fsm.Events{
		{Name: eventCountSent, Src: []string{StateSendingCount}, Dst: StateAwaitingItemRequests},
		{Name: eventLastItemSent, Src: []string{StateAwaitingItemRequests}, Dst: StateAwaitingFinalAck},
		{Name: eventAckAccepted, Src: []string{StateAwaitingItemRequests, StateAwaitingFinalAck}, Dst: StateDone},
		{Name: eventFail, Src: []string{StateSendingCount, StateAwaitingItemRequests, StateAwaitingFinalAck}, Dst: StateFailed},
	}

	callbacks := fsm.Callbacks{
		"enter_" + StateDone: fsmutil.WrapEvent(func(ctx context.Context, e *fsm.Event) error {
			u.progress(100)
			return nil
		}),
	}

	u.machine = fsm.NewFSM(StateSendingCount, events, callbacks)
	return u
}

// Upload sends the waypoint list to the vehicle. The vehicle paces the item
// phase by requesting sequences; the session fails if it goes quiet for
// longer than the session timeout, and a final ack with any result other
// than accepted is a hard failure.
func (t *Transfers) Upload(ctx context.Context, wps []Waypoint, progress ProgressFunc) error {
	if !t.uploadBusy.CompareAndSwap(false, true) {
		return &enginerr.PreconditionError{Reason: "a mission upload is already in progress"}
	}
	defer t.uploadBusy.Store(false)

	if progress == nil {
		progress = noProgress
	}

	u := newUpload(t, wps, progress)
	if err := u.run(ctx); err != nil {
		metrics.TransfersTotal.WithLabelValues("upload", "failed").Inc()
		t.logger.Warn("Mission upload failed", "reason", err.Error())
		return err
	}

	metrics.TransfersTotal.WithLabelValues("upload", "ok").Inc()
	t.logger.Info("Mission upload complete", "items", len(wps))
	return nil
}

func (u *upload) run(ctx context.Context) error {
	count := &mavlink.MissionCount{
		TargetSystem:    u.t.target.SystemID,
		TargetComponent: u.t.target.ComponentID,
		Count:           uint16(len(u.wps)),
		MissionType:     mavlink.MissionTypeMission,
	}
	if err := u.t.link.Send(count); err != nil {
		_ = u.machine.Event(ctx, eventFail)
		return err
	}
	if err := u.machine.Event(ctx, eventCountSent); err != nil {
		return err
	}

	if len(u.wps) == 0 {
		// Nothing for the vehicle to request; it acks the empty mission.
		if err := u.machine.Event(ctx, eventLastItemSent); err != nil {
			return err
		}
	}

	for {
		if u.t.now().Sub(u.sess.lastProgressAt) > u.t.opts.SessionTimeout {
			_ = u.machine.Event(ctx, eventFail)
			return &enginerr.TimeoutError{Op: "Mission upload"}
		}

		if err := u.handleItemRequest(ctx); err != nil {
			_ = u.machine.Event(ctx, eventFail)
			return err
		}

		done, err := u.handleFinalAck(ctx)
		if err != nil {
			_ = u.machine.Event(ctx, eventFail)
			return err
		}
		if done {
			return nil
		}

		if err := sleep(ctx, u.t.opts.PollInterval); err != nil {
			return err
		}
	}
}

// handleItemRequest answers the newest item request, once. Requests older
// than the session are stale; a repeat of an already answered sequence inside
// the duplicate window is an idempotent no-op.
func (u *upload) handleItemRequest(ctx context.Context) error {
	env, ok := u.t.link.Latest((&mavlink.MissionRequestInt{}).Type())
	if !ok || u.sess.isStale(env) || !env.ReceivedAt.After(u.lastRequestSeen) {
		return nil
	}
	u.lastRequestSeen = env.ReceivedAt

	req, ok := env.Msg.(*mavlink.MissionRequestInt)
	if !ok {
		return nil
	}
	if int(req.Seq) >= len(u.wps) {
		u.t.logger.Warn("Vehicle requested out-of-range mission item", "seq", req.Seq)
		return nil
	}

	if answeredAt, ok := u.answered[req.Seq]; ok && env.ReceivedAt.Sub(answeredAt) < u.t.opts.DuplicateWindow {
		return nil
	}

	item := itemFromWaypoint(u.wps[req.Seq], req.Seq, u.t.target)
	if err := u.t.link.Send(item); err != nil {
		return err
	}

	now := u.t.now()
	u.answered[req.Seq] = now
	u.sess.lastProgressAt = now
	if int(req.Seq) > u.highestRequested {
		u.highestRequested = int(req.Seq)
		u.progress(100 * float64(u.highestRequested+1) / float64(len(u.wps)))
	}

	if int(req.Seq) == len(u.wps)-1 && u.machine.Current() == StateAwaitingItemRequests {
		return u.machine.Event(ctx, eventLastItemSent)
	}
	return nil
}

// handleFinalAck resolves the session once a transfer result newer than the
// session start arrives.
func (u *upload) handleFinalAck(ctx context.Context) (bool, error) {
	env, ok := u.t.link.Latest((&mavlink.MissionAck{}).Type())
	if !ok || u.sess.isStale(env) {
		return false, nil
	}

	ack, ok := env.Msg.(*mavlink.MissionAck)
	if !ok {
		return false, nil
	}

	if ack.Result != mavlink.MissionAccepted {
		return false, &enginerr.RejectedError{Op: "Mission upload", Result: ack.Result}
	}

	if err := u.machine.Event(ctx, eventAckAccepted); err != nil {
		return false, err
	}
	return true, nil
}
