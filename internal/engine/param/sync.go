// Package param synchronizes the vehicle's named parameter catalog. The
// vehicle owns the authoritative set; this side accumulates the streamed
// values and tracks completeness against the declared total.
package param

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/internal/pkg/metrics"
	"github.com/groundlink-io/groundlink/pkg/log"
)

// maxParamNameLen is the protocol limit for parameter identifiers.
const maxParamNameLen = 16

// valuePrecision absorbs the float32 representation noise of the wire format:
// values are rounded to this many decimals on receipt.
const valuePrecision = 6

// Sender is the outbound slice of the message bus.
type Sender interface {
	Send(msg mavlink.Message) error
}

// Parameter is one received catalog entry.
type Parameter struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Type  uint8   `json:"type"`
}

// Sync accumulates the parameter catalog of one vehicle.
type Sync struct {
	link    Sender
	target  mavlink.Identity
	primary mavlink.Identity
	logger  log.Logger

	mu            sync.RWMutex
	values        map[string]Parameter
	declaredTotal int
	lastName      string
	lastValue     float64
}

func NewSync(link Sender, primary mavlink.Identity, logger log.Logger) *Sync {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Sync{
		link:    link,
		target:  primary,
		primary: primary,
		logger:  logger,
		values:  make(map[string]Parameter),
	}
}

// RequestAll asks the vehicle to stream its full catalog. The stream arrives
// asynchronously; poll Complete or watch the mirror's parameter group.
func (s *Sync) RequestAll(ctx context.Context) error {
	req := &mavlink.ParamRequestList{
		TargetSystem:    s.target.SystemID,
		TargetComponent: s.target.ComponentID,
	}
	return s.link.Send(req)
}

// Set writes one named parameter. The vehicle's next PARAM_VALUE for the same
// name is the only confirmation; this call does not wait for it.
func (s *Sync) Set(ctx context.Context, name string, value float64, typ uint8) error {
	if len(name) == 0 || len(name) > maxParamNameLen {
		return &enginerr.PreconditionError{
			Reason: fmt.Sprintf("parameter name %q must be 1-%d characters", name, maxParamNameLen),
		}
	}
	if typ == 0 {
		typ = mavlink.ParamTypeReal32
	}

	set := &mavlink.ParamSet{
		TargetSystem:    s.target.SystemID,
		TargetComponent: s.target.ComponentID,
		ParamID:         name,
		ParamValue:      float32(value),
		ParamType:       typ,
	}
	return s.link.Send(set)
}

// Handle consumes PARAM_VALUE messages from the primary identity.
func (s *Sync) Handle(env mavlink.Envelope) {
	if env.Sender != s.primary {
		return
	}
	msg, ok := env.Msg.(*mavlink.ParamValue)
	if !ok {
		return
	}

	value := roundValue(float64(msg.ParamValue))

	s.mu.Lock()
	s.values[msg.ParamID] = Parameter{Name: msg.ParamID, Value: value, Type: msg.ParamType}
	s.declaredTotal = int(msg.ParamCount)
	s.lastName = msg.ParamID
	s.lastValue = value
	s.mu.Unlock()

	metrics.ParamsReceivedTotal.Inc()
}

// Complete reports whether every declared parameter has been seen at least
// once. Duplicates and out-of-order arrival do not disturb it.
func (s *Sync) Complete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.declaredTotal > 0 && len(s.values) >= s.declaredTotal
}

// Progress returns the distinct received count and the declared total.
func (s *Sync) Progress() (received, declared int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values), s.declaredTotal
}

// Get returns one received parameter.
func (s *Sync) Get(name string) (Parameter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.values[name]
	return p, ok
}

// Last returns the most recently received name and value.
func (s *Sync) Last() (string, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastName, s.lastValue
}

// All returns the received parameters sorted by name.
func (s *Sync) All() []Parameter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Parameter, 0, len(s.values))
	for _, p := range s.values {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func roundValue(v float64) float64 {
	shift := math.Pow10(valuePrecision)
	return math.Round(v*shift) / shift
}
