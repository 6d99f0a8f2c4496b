// Package engine builds and runs the full Groundlink stack: one vehicle link
// transport, the message bus, the vehicle façade and the status HTTP server.
package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/groundlink-io/groundlink/internal/datalake"
	"github.com/groundlink-io/groundlink/internal/engine/bus"
	"github.com/groundlink-io/groundlink/internal/engine/vehicle"
	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/internal/statusserver"
	"github.com/groundlink-io/groundlink/pkg/log"
	"github.com/groundlink-io/groundlink/pkg/mqtt"
	"github.com/groundlink-io/groundlink/pkg/options"
)

// Config collects the options the engine needs to come up.
type Config struct {
	Engine *options.EngineOptions
	Mqtt   *options.MqttOptions
	Http   *options.HttpOptions
}

// Engine is one running Groundlink instance.
type Engine struct {
	transport bus.Transport
	bus       *bus.Bus
	vehicle   *vehicle.Vehicle
	server    *statusserver.Server
	store     *datalake.MemStore
	logger    log.Logger
}

// New opens the vehicle link and wires the engine components together.
func (c *Config) New(ctx context.Context) (*Engine, error) {
	logger := log.Std()

	transport, err := c.newTransport(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open vehicle link: %w", err)
	}

	local := mavlink.Identity{SystemID: c.Engine.GcsSystemID, ComponentID: c.Engine.GcsComponentID}
	b := bus.New(transport, mavlink.JSONCodec{}, local)
	store := datalake.NewMemStore()

	v, err := vehicle.New(b, store, c.Engine, logger.WithName("vehicle"))
	if err != nil {
		transport.Close()
		return nil, err
	}

	return &Engine{
		transport: transport,
		bus:       b,
		vehicle:   v,
		server:    statusserver.New(v, c.Http, logger.WithName("http")),
		store:     store,
		logger:    logger,
	}, nil
}

func (c *Config) newTransport(ctx context.Context) (bus.Transport, error) {
	switch c.Engine.Transport {
	case "udp":
		return bus.NewUDPTransport(c.Engine.UdpAddr)

	case "mqtt":
		client, err := mqtt.NewClient(c.Mqtt.ToClientConfig())
		if err != nil {
			return nil, err
		}
		return bus.NewMQTTTransport(ctx, client, c.Mqtt.TopicRoot, c.Mqtt.LinkID)

	default:
		return nil, fmt.Errorf("unknown transport %q", c.Engine.Transport)
	}
}

// Run serves until ctx is done, then closes the vehicle link.
func (e *Engine) Run(ctx context.Context) error {
	defer e.transport.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.vehicle.Run(ctx) })
	g.Go(func() error { return e.server.Run(ctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Vehicle exposes the façade, mainly for tests.
func (e *Engine) Vehicle() *vehicle.Vehicle { return e.vehicle }
