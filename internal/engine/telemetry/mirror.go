package telemetry

import (
	"math"
	"sync"

	"github.com/groundlink-io/groundlink/internal/engine/firmware"
	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/internal/pkg/metrics"
	"github.com/groundlink-io/groundlink/pkg/log"
)

// Mirror consumes inbound messages from the primary vehicle identity and
// keeps State current. Dispatch is pure by type: each recognized message
// updates a disjoint group and raises one notification for it; unrecognized
// types are ignored, never errors.
type Mirror struct {
	state   *State
	fw      firmware.Firmware
	primary mavlink.Identity
	logger  log.Logger

	mu        sync.RWMutex
	listeners map[Group][]func()
}

func NewMirror(state *State, fw firmware.Firmware, primary mavlink.Identity, logger log.Logger) *Mirror {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Mirror{
		state:     state,
		fw:        fw,
		primary:   primary,
		logger:    logger,
		listeners: make(map[Group][]func()),
	}
}

// OnChange registers a notification callback for one state group. Callbacks
// run synchronously on the dispatch goroutine and must not block.
func (m *Mirror) OnChange(g Group, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[g] = append(m.listeners[g], fn)
}

func (m *Mirror) notify(groups ...Group) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range groups {
		for _, fn := range m.listeners[g] {
			fn()
		}
	}
}

// Handle processes one inbound envelope. Messages from identities other than
// the primary one never reach the mirror's state.
func (m *Mirror) Handle(env mavlink.Envelope) {
	if env.Sender != m.primary {
		return
	}

	switch msg := env.Msg.(type) {
	case *mavlink.Heartbeat:
		m.handleHeartbeat(msg, env)
	case *mavlink.SysStatus:
		m.handleSysStatus(msg)
	case *mavlink.Attitude:
		m.handleAttitude(msg)
	case *mavlink.GlobalPositionInt:
		m.handleGlobalPosition(msg)
	case *mavlink.GpsRawInt:
		m.handleGpsRaw(msg)
	case *mavlink.VfrHud:
		m.handleVfrHud(msg)
	case *mavlink.ParamValue:
		m.handleParamValue(msg)
	case *mavlink.StatusText:
		m.handleStatusText(msg)
	default:
		if m.fw.HandleSpecific(env) {
			return
		}
		// Unrecognized types are simply not mirrored.
	}
}

func (m *Mirror) handleHeartbeat(msg *mavlink.Heartbeat, env mavlink.Envelope) {
	armed := msg.BaseMode&mavlink.ModeFlagSafetyArmed != 0

	mode := "unknown"
	if msg.BaseMode&mavlink.ModeFlagCustomModeEnabled != 0 {
		if name, ok := m.fw.ModeName(msg.VehicleType, msg.CustomMode); ok {
			mode = name
		} else {
			m.logger.Debug("Heartbeat carries unmapped mode", "customMode", msg.CustomMode, "vehicleType", msg.VehicleType)
		}
	}

	var armChanged, modeChanged bool
	m.state.update(func(s *Snapshot) {
		armChanged = s.Armed != armed
		modeChanged = s.Mode != mode
		s.VehicleType = msg.VehicleType
		s.Autopilot = msg.Autopilot
		s.SystemStatus = msg.SystemStatus
		s.Armed = armed
		s.Mode = mode
		s.LastHeartbeat = env.ReceivedAt
	})
	metrics.VehicleOnline.Set(1)

	if armChanged {
		m.notify(GroupArmState)
	}
	if modeChanged {
		m.notify(GroupMode)
	}
}

func (m *Mirror) handleSysStatus(msg *mavlink.SysStatus) {
	m.state.update(func(s *Snapshot) {
		s.Voltage = float64(msg.VoltageBattery) / 1000 // mV -> V
		if msg.CurrentBattery == mavlink.CurrentUnknown {
			s.Current = nil
		} else {
			c := float64(msg.CurrentBattery) / 100 // cA -> A
			s.Current = &c
		}
		s.BatteryRemaining = msg.BatteryRemaining
		s.CPULoad = float64(msg.Load) / 10 // d% -> %
	})
	m.notify(GroupPower, GroupCPULoad)
}

func (m *Mirror) handleAttitude(msg *mavlink.Attitude) {
	m.state.update(func(s *Snapshot) {
		s.Roll = radToDeg(float64(msg.Roll))
		s.Pitch = radToDeg(float64(msg.Pitch))
		s.Yaw = radToDeg(float64(msg.Yaw))
		s.RollRate = radToDeg(float64(msg.RollSpeed))
		s.PitchRate = radToDeg(float64(msg.PitchSpeed))
		s.YawRate = radToDeg(float64(msg.YawSpeed))
	})
	m.notify(GroupAttitude)
}

func (m *Mirror) handleGlobalPosition(msg *mavlink.GlobalPositionInt) {
	m.state.update(func(s *Snapshot) {
		s.Latitude = float64(msg.Lat) / 1e7
		s.Longitude = float64(msg.Lon) / 1e7
		s.AltitudeMSL = float64(msg.Alt) / 1000 // mm -> m
		s.AltitudeRel = float64(msg.RelativeAlt) / 1000
		s.VelocityX = float64(msg.Vx) / 100 // cm/s -> m/s
		s.VelocityY = float64(msg.Vy) / 100
		s.VelocityZ = float64(msg.Vz) / 100
		if msg.Hdg == mavlink.HeadingUnknown {
			s.Heading = nil
		} else {
			h := float64(msg.Hdg) / 100 // cdeg -> deg
			s.Heading = &h
		}
	})
	m.notify(GroupPosition, GroupAltitude)
}

func (m *Mirror) handleGpsRaw(msg *mavlink.GpsRawInt) {
	m.state.update(func(s *Snapshot) {
		s.GPSFix = msg.FixType
		s.Satellites = msg.SatellitesVisible
		s.HDOP = msg.Eph
		s.VDOP = msg.Epv
	})
	m.notify(GroupGPS)
}

func (m *Mirror) handleVfrHud(msg *mavlink.VfrHud) {
	m.state.update(func(s *Snapshot) {
		s.AltitudeMSL = float64(msg.Alt)
	})
	m.notify(GroupAltitude)
}

func (m *Mirror) handleParamValue(msg *mavlink.ParamValue) {
	m.state.update(func(s *Snapshot) {
		s.LastParamName = msg.ParamID
		s.LastParamValue = float64(msg.ParamValue)
	})
	m.notify(GroupParameter)
}

func (m *Mirror) handleStatusText(msg *mavlink.StatusText) {
	m.state.update(func(s *Snapshot) {
		s.StatusText = msg.Text
		s.StatusSeverity = msg.Severity
	})
	m.logger.Info("Vehicle status", "severity", msg.Severity, "text", msg.Text)
	m.notify(GroupStatusText)
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
