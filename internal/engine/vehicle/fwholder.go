package vehicle

import (
	"sync"

	"github.com/groundlink-io/groundlink/internal/engine/firmware"
	"github.com/groundlink-io/groundlink/internal/mavlink"
)

var _ firmware.Firmware = (*fwHolder)(nil)

// fwHolder delegates to the currently resolved firmware strategy. The mirror
// is constructed before the first heartbeat identifies the autopilot, so it
// holds this indirection instead of a fixed strategy.
type fwHolder struct {
	mu sync.RWMutex
	fw firmware.Firmware
}

func (h *fwHolder) set(fw firmware.Firmware) {
	h.mu.Lock()
	h.fw = fw
	h.mu.Unlock()
}

func (h *fwHolder) get() firmware.Firmware {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fw
}

func (h *fwHolder) Name() string { return h.get().Name() }

func (h *fwHolder) Modes(vehicleType uint8) []firmware.Mode {
	return h.get().Modes(vehicleType)
}

func (h *fwHolder) ModeName(vehicleType uint8, customMode uint32) (string, bool) {
	return h.get().ModeName(vehicleType, customMode)
}

func (h *fwHolder) HandleSpecific(env mavlink.Envelope) bool {
	return h.get().HandleSpecific(env)
}
