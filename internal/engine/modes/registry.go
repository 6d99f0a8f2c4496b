// Package modes keeps the registry of invocable vehicle actions. Actions are
// declared by name up front so callers can list what a vehicle will support,
// and bound to live implementations once a vehicle is connected and its
// firmware and type are known.
package modes

import (
	"context"
	"fmt"
	"sync"

	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/engine/firmware"
	"github.com/groundlink-io/groundlink/pkg/log"
)

// Action is one invocable vehicle operation.
type Action func(ctx context.Context) error

// Registry maps action names to their implementations. Declaration and
// binding are separate steps: a declared, unbound action shows up in Names
// but refuses to Invoke.
type Registry struct {
	logger log.Logger

	mu      sync.RWMutex
	actions map[string]Action
	order   []string
}

func NewRegistry(logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Registry{
		logger:  logger,
		actions: make(map[string]Action),
	}
}

// Register declares an action by name without an implementation. Registering
// an existing name is a no-op.
func (r *Registry) Register(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[name]; ok {
		return
	}
	r.actions[name] = nil
	r.order = append(r.order, name)
}

// Bind attaches an implementation to an action, declaring it first if needed.
func (r *Registry) Bind(name string, fn Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[name]; !ok {
		r.order = append(r.order, name)
	}
	r.actions[name] = fn
}

// Invoke runs an action by name. An unknown or unbound name is a
// precondition failure, not a transport error.
func (r *Registry) Invoke(ctx context.Context, name string) error {
	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return &enginerr.PreconditionError{Reason: fmt.Sprintf("unknown action %q", name)}
	}
	if fn == nil {
		return &enginerr.PreconditionError{Reason: fmt.Sprintf("action %q is not available until a vehicle is connected", name)}
	}

	r.logger.Debug("Invoking action", "action", name)
	return fn(ctx)
}

// Bound reports whether the action exists and has an implementation.
func (r *Registry) Bound(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.actions[name]
	return ok && fn != nil
}

// Names returns the declared actions in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// BindModes declares and binds one action per user-invocable flight mode of
// the given vehicle type. Internal modes (boot placeholders) are resolvable
// in telemetry but never registered as actions.
func (r *Registry) BindModes(fw firmware.Firmware, vehicleType uint8, set func(ctx context.Context, modeName string) error) {
	for _, m := range fw.Modes(vehicleType) {
		if m.Internal {
			continue
		}
		name := m.Name
		r.Bind(name, func(ctx context.Context) error {
			return set(ctx, name)
		})
	}
	r.logger.Info("Bound mode actions", "firmware", fw.Name(), "vehicleType", vehicleType)
}
