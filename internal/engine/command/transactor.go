// Package command implements the reliable command primitive: send one
// COMMAND_LONG, then poll for a matching acknowledgment with a deadline.
// Every higher-level operation (arm, takeoff, mode change, rate configuration,
// mission start) is built on this.
package command

import (
	"context"
	"time"

	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/internal/pkg/metrics"
	"github.com/groundlink-io/groundlink/pkg/log"
)

// Link is the slice of the message bus the transactor needs.
type Link interface {
	Send(msg mavlink.Message) error
	Latest(msgType string) (mavlink.Envelope, bool)
}

// Options tune the ack wait. Zero values fall back to the protocol defaults.
type Options struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

func (o *Options) withDefaults() Options {
	out := Options{PollInterval: 100 * time.Millisecond, Timeout: 5 * time.Second}
	if o == nil {
		return out
	}
	if o.PollInterval > 0 {
		out.PollInterval = o.PollInterval
	}
	if o.Timeout > 0 {
		out.Timeout = o.Timeout
	}
	return out
}

// Transactor sends commands to one target vehicle and awaits their acks.
//
// Acks carry no correlation id, so matching is by command kind only: two
// overlapping Sends of the same kind can observe each other's ack. This is a
// protocol limitation, inherited knowingly rather than papered over.
type Transactor struct {
	link   Link
	target mavlink.Identity
	opts   Options
	logger log.Logger

	now func() time.Time
}

func NewTransactor(link Link, target mavlink.Identity, opts *Options, logger log.Logger) *Transactor {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Transactor{
		link:   link,
		target: target,
		opts:   opts.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

// Command builds a COMMAND_LONG addressed to the transactor's target.
func (t *Transactor) Command(kind uint16, params ...float32) *mavlink.CommandLong {
	cmd := &mavlink.CommandLong{
		TargetSystem:    t.target.SystemID,
		TargetComponent: t.target.ComponentID,
		Command:         kind,
	}
	set := []*float32{&cmd.Param1, &cmd.Param2, &cmd.Param3, &cmd.Param4, &cmd.Param5, &cmd.Param6, &cmd.Param7}
	for i, p := range params {
		if i >= len(set) {
			break
		}
		*set[i] = p
	}
	return cmd
}

// Send transmits cmd and waits for its acknowledgment.
//
// Outcomes: nil when an ack with MAV_RESULT_ACCEPTED or IN_PROGRESS arrives
// in time; RejectedError for any other result code; TimeoutError when no
// matching ack arrives within the deadline. The network send itself is
// fire-and-forget; no vehicle state is mutated here.
func (t *Transactor) Send(ctx context.Context, cmd *mavlink.CommandLong) error {
	issuedAt := t.now()

	if err := t.link.Send(cmd); err != nil {
		return err
	}

	ticker := time.NewTicker(t.opts.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(t.opts.Timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-deadline.C:
			metrics.CommandsSentTotal.WithLabelValues("timeout").Inc()
			t.logger.Warn("Command unacknowledged", "command", cmd.Command)
			return &enginerr.TimeoutError{Op: "Command"}

		case <-ticker.C:
			env, ok := t.link.Latest((&mavlink.CommandAck{}).Type())
			if !ok {
				continue
			}
			ack, ok := env.Msg.(*mavlink.CommandAck)
			if !ok || ack.Command != cmd.Command {
				continue
			}
			// Acks older than this send belong to an earlier transaction.
			if !env.ReceivedAt.After(issuedAt) {
				continue
			}

			switch ack.Result {
			case mavlink.ResultAccepted, mavlink.ResultInProgress:
				metrics.CommandsSentTotal.WithLabelValues("accepted").Inc()
				return nil
			default:
				metrics.CommandsSentTotal.WithLabelValues("rejected").Inc()
				return &enginerr.RejectedError{Op: "Command", Result: ack.Result}
			}
		}
	}
}
