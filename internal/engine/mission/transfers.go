package mission

import (
	"sync/atomic"
	"time"

	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/pkg/log"
)

// Link is the slice of the message bus the transfer machines need.
type Link interface {
	Send(msg mavlink.Message) error
	Latest(msgType string) (mavlink.Envelope, bool)
}

// Options tune the transfer cadences and deadlines. The upstream firmware
// implementations disagree on these constants, so they are configuration
// with documented defaults, not protocol truths.
type Options struct {
	// CountInterval is the re-send cadence of MISSION_REQUEST_LIST while
	// waiting for a count. Default 250ms.
	CountInterval time.Duration

	// ItemInterval is how long to wait for a requested item before
	// re-requesting it. Default 250ms.
	ItemInterval time.Duration

	// PollInterval is the sleep between reply checks. Default 25ms.
	PollInterval time.Duration

	// SessionTimeout bounds a whole download, and bounds upload inactivity
	// (no new item request or final ack). Default 30s.
	SessionTimeout time.Duration

	// DuplicateWindow suppresses re-answering an item request for a sequence
	// answered this recently. Default 1s.
	DuplicateWindow time.Duration
}

func (o *Options) withDefaults() Options {
	out := Options{
		CountInterval:   250 * time.Millisecond,
		ItemInterval:    250 * time.Millisecond,
		PollInterval:    25 * time.Millisecond,
		SessionTimeout:  30 * time.Second,
		DuplicateWindow: time.Second,
	}
	if o == nil {
		return out
	}
	if o.CountInterval > 0 {
		out.CountInterval = o.CountInterval
	}
	if o.ItemInterval > 0 {
		out.ItemInterval = o.ItemInterval
	}
	if o.PollInterval > 0 {
		out.PollInterval = o.PollInterval
	}
	if o.SessionTimeout > 0 {
		out.SessionTimeout = o.SessionTimeout
	}
	if o.DuplicateWindow > 0 {
		out.DuplicateWindow = o.DuplicateWindow
	}
	return out
}

// session is the transient state of one transfer. Replies timestamped at or
// before startedAt belong to a superseded session and are never accepted.
type session struct {
	startedAt      time.Time
	expectedCount  int
	items          []*mavlink.MissionItemInt
	nextIndex      int
	lastProgressAt time.Time
}

func (s *session) isStale(env mavlink.Envelope) bool {
	return !env.ReceivedAt.After(s.startedAt)
}

// Transfers owns mission transfer for one vehicle. At most one session per
// direction may be active at a time; a second call while one is in flight
// fails immediately without touching the wire.
type Transfers struct {
	link   Link
	target mavlink.Identity
	opts   Options
	logger log.Logger

	now func() time.Time

	downloadBusy atomic.Bool
	uploadBusy   atomic.Bool
}

func NewTransfers(link Link, target mavlink.Identity, opts *Options, logger log.Logger) *Transfers {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Transfers{
		link:   link,
		target: target,
		opts:   opts.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

// ProgressFunc reports transfer progress in percent.
type ProgressFunc func(percent float64)

func noProgress(float64) {}
