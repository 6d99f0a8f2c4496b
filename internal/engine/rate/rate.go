// Package rate configures how often the vehicle pushes each telemetry
// message type, merging built-in defaults with persisted user overrides.
package rate

// Mode selects how a message type's push interval is configured.
type Mode string

const (
	// UseDefault asks the firmware for its default rate (interval 0).
	UseDefault Mode = "default"

	// Disabled turns the message stream off (interval -1).
	Disabled Mode = "disabled"

	// Custom pushes at Rate.Hz (interval 1e6/hz microseconds).
	Custom Mode = "custom"

	// DoNotTouch keeps an entry in the configuration but excludes it from
	// the outbound apply pass entirely, leaving whatever the firmware or
	// another ground station configured.
	DoNotTouch Mode = "doNotTouch"
)

// Rate is the configured push frequency for one message type.
type Rate struct {
	Mode Mode    `json:"mode"`
	Hz   float64 `json:"hz,omitempty"`
}

// Config maps message type names to their configured rates.
type Config map[string]Rate

// Defaults is the compiled-in rate table applied when the user has not
// customized a message type.
func Defaults() Config {
	return Config{
		"ATTITUDE":            {Mode: Custom, Hz: 10},
		"GLOBAL_POSITION_INT": {Mode: Custom, Hz: 4},
		"GPS_RAW_INT":         {Mode: Custom, Hz: 1},
		"SYS_STATUS":          {Mode: Custom, Hz: 1},
		"VFR_HUD":             {Mode: Custom, Hz: 4},
		"BATTERY_STATUS":      {Mode: Custom, Hz: 1},
		"HEARTBEAT":           {Mode: DoNotTouch},
	}
}

// Merge overlays user overrides on defaults. Every key of overrides wins for
// that key; no entry is ever dropped. Merge is idempotent:
// Merge(Merge(d, o), o) == Merge(d, o).
func Merge(defaults, overrides Config) Config {
	out := make(Config, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// IntervalMicros translates a Rate to the SET_MESSAGE_INTERVAL argument.
func IntervalMicros(r Rate) float32 {
	switch r.Mode {
	case Disabled:
		return -1
	case Custom:
		if r.Hz <= 0 {
			return 0
		}
		return float32(1_000_000 / r.Hz)
	default:
		return 0
	}
}
