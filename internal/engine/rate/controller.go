package rate

import (
	"context"
	"fmt"

	"github.com/groundlink-io/groundlink/internal/engine/command"
	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/pkg/log"
)

// Controller pushes the merged rate configuration to the vehicle through
// SET_MESSAGE_INTERVAL commands and persists user overrides.
type Controller struct {
	tx     *command.Transactor
	store  *Store
	logger log.Logger
}

func NewController(tx *command.Transactor, store *Store, logger log.Logger) *Controller {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Controller{tx: tx, store: store, logger: logger}
}

// Merged is the effective configuration: defaults overlaid with the
// persisted overrides.
func (c *Controller) Merged() Config {
	return Merge(Defaults(), c.store.Overrides())
}

// Configure sets the rate for one message type on the vehicle and, when the
// vehicle accepts it, records the override so it survives restarts.
func (c *Controller) Configure(ctx context.Context, msgType string, r Rate) error {
	if err := c.apply(ctx, msgType, r); err != nil {
		return err
	}
	return c.store.Put(msgType, r)
}

// ApplyAll pushes every entry of the merged configuration to the vehicle,
// skipping DoNotTouch entries. Rejections for individual message types are
// logged and do not abort the pass; the first timeout does, since the link
// is presumably down.
func (c *Controller) ApplyAll(ctx context.Context) error {
	for msgType, r := range c.Merged() {
		if r.Mode == DoNotTouch {
			continue
		}
		if err := c.apply(ctx, msgType, r); err != nil {
			if enginerr.IsRejected(err) {
				c.logger.Warn("Vehicle rejected rate configuration", "type", msgType, "reason", err.Error())
				continue
			}
			return err
		}
	}
	return nil
}

func (c *Controller) apply(ctx context.Context, msgType string, r Rate) error {
	id, ok := mavlink.MessageID(msgType)
	if !ok {
		return &enginerr.PreconditionError{Reason: fmt.Sprintf("no numeric id known for message type %q", msgType)}
	}

	cmd := c.tx.Command(mavlink.CmdSetMessageInterval, float32(id), IntervalMicros(r))
	if err := c.tx.Send(ctx, cmd); err != nil {
		return err
	}

	c.logger.Debug("Configured message rate", "type", msgType, "mode", string(r.Mode), "hz", r.Hz)
	return nil
}
