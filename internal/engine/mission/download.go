package mission

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/internal/pkg/metrics"
	fsmutil "github.com/groundlink-io/groundlink/internal/pkg/util/fsm"
)

// Download states.
const (
	StateRequestingCount = "requesting_count"
	StateDownloading     = "downloading_items"
	StateAcknowledging   = "acknowledging"
	StateDone            = "done"
	StateFailed          = "failed"
)

// Download events.
const (
	eventCountReceived = "count_received"
	eventItemsComplete = "items_complete"
	eventAcked         = "acked"
	eventFail          = "fail"
)

type download struct {
	t        *Transfers
	sess     *session
	progress ProgressFunc
	machine  *fsm.FSM
}

func newDownload(t *Transfers, progress ProgressFunc) *download {
	d := &download{
		t:        t,
		sess:     &session{startedAt: t.now()},
		progress: progress,
	}
	d.sess.lastProgressAt = d.sess.startedAt

	events := fsm.Events{
		{Name: eventCountReceived, Src: []string{StateRequestingCount}, Dst: StateDownloading},
		{Name: eventItemsComplete, Src: []string{StateDownloading}, Dst: StateAcknowledging},
		{Name: eventAcked, Src: []string{StateAcknowledging}, Dst: StateDone},
		{Name: eventFail, Src: []string{StateRequestingCount, StateDownloading, StateAcknowledging}, Dst: StateFailed},
	}

	callbacks := fsm.Callbacks{
		"enter_" + StateDownloading: fsmutil.WrapEvent(d.actionStoreCount),
	}

	d.machine = fsm.NewFSM(StateRequestingCount, events, callbacks)
	return d
}

// actionStoreCount sizes the session for the declared item count.
func (d *download) actionStoreCount(ctx context.Context, e *fsm.Event) error {
	count := e.Args[0].(int)
	d.sess.expectedCount = count
	d.sess.items = make([]*mavlink.MissionItemInt, 0, count)
	d.sess.nextIndex = 0
	return nil
}

// Download retrieves the mission stored on the vehicle and returns it as the
// application's waypoint list. Only one download may be in flight at a time.
func (t *Transfers) Download(ctx context.Context, progress ProgressFunc) ([]Waypoint, error) {
	if !t.downloadBusy.CompareAndSwap(false, true) {
		return nil, &enginerr.PreconditionError{Reason: "a mission download is already in progress"}
	}
	defer t.downloadBusy.Store(false)

	if progress == nil {
		progress = noProgress
	}

	d := newDownload(t, progress)
	wps, err := d.run(ctx)
	if err != nil {
		metrics.TransfersTotal.WithLabelValues("download", "failed").Inc()
		t.logger.Warn("Mission download failed", "reason", err.Error())
		return nil, err
	}

	metrics.TransfersTotal.WithLabelValues("download", "ok").Inc()
	t.logger.Info("Mission download complete", "items", len(wps))
	return wps, nil
}

func (d *download) run(ctx context.Context) ([]Waypoint, error) {
	deadline := d.sess.startedAt.Add(d.t.opts.SessionTimeout)

	count, err := d.awaitCount(ctx, deadline)
	if err != nil {
		_ = d.machine.Event(ctx, eventFail)
		return nil, err
	}
	if err := d.machine.Event(ctx, eventCountReceived, count); err != nil {
		return nil, err
	}

	if err := d.collectItems(ctx, deadline); err != nil {
		_ = d.machine.Event(ctx, eventFail)
		return nil, err
	}
	if err := d.machine.Event(ctx, eventItemsComplete); err != nil {
		return nil, err
	}

	// Tell the vehicle the transfer succeeded so it releases the session.
	ack := &mavlink.MissionAck{
		TargetSystem:    d.t.target.SystemID,
		TargetComponent: d.t.target.ComponentID,
		Result:          mavlink.MissionAccepted,
		MissionType:     mavlink.MissionTypeMission,
	}
	if err := d.t.link.Send(ack); err != nil {
		_ = d.machine.Event(ctx, eventFail)
		return nil, err
	}
	if err := d.machine.Event(ctx, eventAcked); err != nil {
		return nil, err
	}

	wps := make([]Waypoint, 0, len(d.sess.items))
	for _, item := range d.sess.items {
		wps = append(wps, waypointFromItem(item))
	}
	d.progress(100)
	return wps, nil
}

// awaitCount re-sends the mission list request on the configured cadence
// until a count newer than the session start arrives.
func (d *download) awaitCount(ctx context.Context, deadline time.Time) (int, error) {
	req := &mavlink.MissionRequestList{
		TargetSystem:    d.t.target.SystemID,
		TargetComponent: d.t.target.ComponentID,
		MissionType:     mavlink.MissionTypeMission,
	}

	var lastSend time.Time
	for {
		now := d.t.now()
		if now.After(deadline) {
			return 0, &enginerr.TimeoutError{Op: "Mission download (awaiting count)"}
		}

		if now.Sub(lastSend) >= d.t.opts.CountInterval {
			if err := d.t.link.Send(req); err != nil {
				return 0, err
			}
			lastSend = now
		}

		if env, ok := d.t.link.Latest((&mavlink.MissionCount{}).Type()); ok && !d.sess.isStale(env) {
			if count, ok := env.Msg.(*mavlink.MissionCount); ok {
				return int(count.Count), nil
			}
		}

		if err := sleep(ctx, d.t.opts.PollInterval); err != nil {
			return 0, err
		}
	}
}

// collectItems requests items one sequence at a time, re-requesting on the
// item cadence. There is no per-item retry counter; the overall session
// deadline bounds the whole phase.
func (d *download) collectItems(ctx context.Context, deadline time.Time) error {
	for d.sess.nextIndex < d.sess.expectedCount {
		seq := uint16(d.sess.nextIndex)
		req := &mavlink.MissionRequestInt{
			TargetSystem:    d.t.target.SystemID,
			TargetComponent: d.t.target.ComponentID,
			Seq:             seq,
			MissionType:     mavlink.MissionTypeMission,
		}
		if err := d.t.link.Send(req); err != nil {
			return err
		}

		itemDeadline := d.t.now().Add(d.t.opts.ItemInterval)
		for {
			if d.t.now().After(deadline) {
				return &enginerr.TimeoutError{Op: fmt.Sprintf("Mission download (item %d)", seq)}
			}

			if env, ok := d.t.link.Latest((&mavlink.MissionItemInt{}).Type()); ok && !d.sess.isStale(env) {
				if item, ok := env.Msg.(*mavlink.MissionItemInt); ok && item.Seq == seq {
					d.sess.items = append(d.sess.items, item)
					d.sess.nextIndex++
					d.sess.lastProgressAt = env.ReceivedAt
					d.progress(100 * float64(d.sess.nextIndex) / float64(d.sess.expectedCount))
					break
				}
			}

			if d.t.now().After(itemDeadline) {
				// Re-send the same request and keep waiting.
				break
			}

			if err := sleep(ctx, d.t.opts.PollInterval); err != nil {
				return err
			}
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
