// Package vehicle assembles the protocol engine for one vehicle: the message
// bus feeds the telemetry mirror, the variable projector and the parameter
// sync, while commands, mission transfers and rate configuration share one
// transactor. The façade is what the CLI and the status server talk to.
package vehicle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/groundlink-io/groundlink/internal/datalake"
	"github.com/groundlink-io/groundlink/internal/engine/bus"
	"github.com/groundlink-io/groundlink/internal/engine/command"
	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/engine/firmware"
	"github.com/groundlink-io/groundlink/internal/engine/mission"
	"github.com/groundlink-io/groundlink/internal/engine/modes"
	"github.com/groundlink-io/groundlink/internal/engine/param"
	"github.com/groundlink-io/groundlink/internal/engine/project"
	"github.com/groundlink-io/groundlink/internal/engine/rate"
	"github.com/groundlink-io/groundlink/internal/engine/telemetry"
	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/pkg/log"
	"github.com/groundlink-io/groundlink/pkg/options"
)

// DefaultTakeoffAltitude is used by the parameterless takeoff action, in
// meters above home.
const DefaultTakeoffAltitude = 10.0

// Vehicle is the engine façade for one primary vehicle identity.
type Vehicle struct {
	primary mavlink.Identity
	logger  log.Logger

	bus       *bus.Bus
	state     *telemetry.State
	mirror    *telemetry.Mirror
	projector *project.Projector
	tx        *command.Transactor
	transfers *mission.Transfers
	params    *param.Sync
	rates     *rate.Controller
	rateStore *rate.Store
	actions   *modes.Registry
	fw        *fwHolder

	mu     sync.Mutex
	runCtx context.Context

	connectOnce sync.Once
}

// New wires the engine components onto the given bus. Handlers are subscribed
// here; the bus must not be running yet.
func New(b *bus.Bus, store datalake.Store, opts *options.EngineOptions, logger log.Logger) (*Vehicle, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	primary := mavlink.Identity{SystemID: opts.SystemID, ComponentID: opts.ComponentID}
	fw := &fwHolder{fw: firmware.ForAutopilot(0)}
	state := telemetry.NewState()

	tx := command.NewTransactor(b, primary, &command.Options{
		PollInterval: opts.AckPollInterval,
		Timeout:      opts.AckTimeout,
	}, logger.WithName("command"))

	rateStore, err := rate.NewStore(opts.RatesFile, logger.WithName("rate"))
	if err != nil {
		return nil, err
	}

	v := &Vehicle{
		primary:   primary,
		logger:    logger,
		bus:       b,
		state:     state,
		mirror:    telemetry.NewMirror(state, fw, primary, logger.WithName("telemetry")),
		projector: project.NewProjector(store, primary, nil),
		tx:        tx,
		transfers: mission.NewTransfers(b, primary, &mission.Options{
			CountInterval:   opts.CountInterval,
			ItemInterval:    opts.ItemInterval,
			SessionTimeout:  opts.TransferTimeout,
			DuplicateWindow: opts.DuplicateWindow,
		}, logger.WithName("mission")),
		params:    param.NewSync(b, primary, logger.WithName("param")),
		rates:     rate.NewController(tx, rateStore, logger.WithName("rate")),
		rateStore: rateStore,
		actions:   modes.NewRegistry(logger.WithName("modes")),
		fw:        fw,
		runCtx:    context.Background(),
	}

	v.bindBuiltinActions()

	b.Subscribe(v.observe)
	b.Subscribe(v.mirror.Handle)
	b.Subscribe(v.projector.Handle)
	b.Subscribe(v.params.Handle)

	return v, nil
}

// Run drives the bus dispatch loop and the rate override file watcher until
// ctx is done.
func (v *Vehicle) Run(ctx context.Context) error {
	v.mu.Lock()
	v.runCtx = ctx
	v.mu.Unlock()

	if err := v.rateStore.Watch(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return v.bus.Run(ctx) })
	return g.Wait()
}

// observe watches the inbound stream for the first primary heartbeat, which
// reveals the firmware family and vehicle type the rest of the setup needs.
func (v *Vehicle) observe(env mavlink.Envelope) {
	if env.Sender != v.primary {
		return
	}
	hb, ok := env.Msg.(*mavlink.Heartbeat)
	if !ok {
		return
	}

	v.connectOnce.Do(func() {
		fw := firmware.ForAutopilot(hb.Autopilot)
		v.fw.set(fw)
		v.actions.BindModes(fw, hb.VehicleType, v.SetMode)

		v.logger.Info("Vehicle connected",
			"firmware", fw.Name(), "vehicleType", hb.VehicleType,
			"system", v.primary.SystemID, "component", v.primary.ComponentID)

		v.mu.Lock()
		ctx := v.runCtx
		v.mu.Unlock()

		// Connect-time chores wait on acks, so they leave the dispatch
		// goroutine.
		go v.onConnect(ctx)
	})
}

func (v *Vehicle) onConnect(ctx context.Context) {
	if err := v.rates.ApplyAll(ctx); err != nil {
		v.logger.Warn("Initial rate configuration incomplete", "reason", err.Error())
	}
	if err := v.params.RequestAll(ctx); err != nil {
		v.logger.Warn("Parameter catalog request failed", "reason", err.Error())
	}
}

func (v *Vehicle) bindBuiltinActions() {
	v.actions.Bind("arm", v.Arm)
	v.actions.Bind("disarm", v.Disarm)
	v.actions.Bind("takeoff", func(ctx context.Context) error {
		return v.Takeoff(ctx, DefaultTakeoffAltitude)
	})
	v.actions.Bind("land", v.Land)
	v.actions.Bind("start_mission", v.StartMission)
}

// Arm requests motor arming and waits for the acknowledgment.
func (v *Vehicle) Arm(ctx context.Context) error {
	return v.tx.Send(ctx, v.tx.Command(mavlink.CmdComponentArmDisarm, 1))
}

// Disarm requests motor disarming and waits for the acknowledgment.
func (v *Vehicle) Disarm(ctx context.Context) error {
	return v.tx.Send(ctx, v.tx.Command(mavlink.CmdComponentArmDisarm, 0))
}

// Takeoff commands a takeoff to the given altitude in meters above home.
func (v *Vehicle) Takeoff(ctx context.Context, altitude float64) error {
	if altitude <= 0 {
		return &enginerr.PreconditionError{Reason: "takeoff altitude must be positive"}
	}
	return v.tx.Send(ctx, v.tx.Command(mavlink.CmdNavTakeoff, 0, 0, 0, 0, 0, 0, float32(altitude)))
}

// Land commands a landing at the current position.
func (v *Vehicle) Land(ctx context.Context) error {
	return v.tx.Send(ctx, v.tx.Command(mavlink.CmdNavLand))
}

// StartMission begins executing the stored mission from its first item.
func (v *Vehicle) StartMission(ctx context.Context) error {
	return v.tx.Send(ctx, v.tx.Command(mavlink.CmdMissionStart))
}

// SetMode switches the vehicle to the named flight mode. An unmapped name
// fails before anything touches the wire.
func (v *Vehicle) SetMode(ctx context.Context, name string) error {
	value, ok := firmware.ModeValue(v.fw, v.state.VehicleType(), name)
	if !ok {
		return &enginerr.PreconditionError{
			Reason: "mode " + name + " is not known for this vehicle",
		}
	}
	return v.tx.Send(ctx, v.tx.Command(mavlink.CmdDoSetMode,
		float32(mavlink.ModeFlagCustomModeEnabled), float32(value)))
}

// Modes lists the user-invocable flight modes of the connected vehicle.
func (v *Vehicle) Modes() []firmware.Mode {
	all := v.fw.Modes(v.state.VehicleType())
	out := make([]firmware.Mode, 0, len(all))
	for _, m := range all {
		if !m.Internal {
			out = append(out, m)
		}
	}
	return out
}

// Snapshot returns the current mirrored vehicle state.
func (v *Vehicle) Snapshot() telemetry.Snapshot { return v.state.Snapshot() }

// Online reports whether a primary heartbeat arrived within the window.
func (v *Vehicle) Online(window time.Duration) bool {
	last := v.state.LastHeartbeat()
	return !last.IsZero() && time.Since(last) < window
}

func (v *Vehicle) State() *telemetry.State        { return v.state }
func (v *Vehicle) Mirror() *telemetry.Mirror      { return v.mirror }
func (v *Vehicle) Params() *param.Sync            { return v.params }
func (v *Vehicle) Missions() *mission.Transfers   { return v.transfers }
func (v *Vehicle) Rates() *rate.Controller        { return v.rates }
func (v *Vehicle) Actions() *modes.Registry       { return v.actions }
func (v *Vehicle) Firmware() firmware.Firmware    { return v.fw }
