package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*EngineOptions)(nil)

// EngineOptions contains the protocol engine tunables. Upstream firmware
// implementations disagree on several of these constants, so all of them are
// configuration with documented defaults rather than hard-coded values.
type EngineOptions struct {
	// SystemID and ComponentID select the primary vehicle identity.
	SystemID    uint8 `json:"system-id" mapstructure:"system-id"`
	ComponentID uint8 `json:"component-id" mapstructure:"component-id"`

	// GcsSystemID and GcsComponentID identify this ground station on the link.
	GcsSystemID    uint8 `json:"gcs-system-id" mapstructure:"gcs-system-id"`
	GcsComponentID uint8 `json:"gcs-component-id" mapstructure:"gcs-component-id"`

	// Transport selects the vehicle link: 'udp' or 'mqtt'.
	Transport string `json:"transport" mapstructure:"transport"`

	// UdpAddr is the local listen address for the UDP link.
	UdpAddr string `json:"udp-addr" mapstructure:"udp-addr"`

	// AckPollInterval is the polling cadence while waiting for a command ack.
	AckPollInterval time.Duration `json:"ack-poll-interval" mapstructure:"ack-poll-interval"`

	// AckTimeout bounds the wait for a command acknowledgment.
	AckTimeout time.Duration `json:"ack-timeout" mapstructure:"ack-timeout"`

	// CountInterval is the re-send cadence for the mission list request.
	CountInterval time.Duration `json:"count-interval" mapstructure:"count-interval"`

	// ItemInterval is the re-request cadence for an unanswered mission item.
	ItemInterval time.Duration `json:"item-interval" mapstructure:"item-interval"`

	// TransferTimeout bounds an entire mission upload or download session.
	TransferTimeout time.Duration `json:"transfer-timeout" mapstructure:"transfer-timeout"`

	// DuplicateWindow suppresses repeated item requests for an already
	// answered sequence during upload.
	DuplicateWindow time.Duration `json:"duplicate-window" mapstructure:"duplicate-window"`

	// RatesFile is the path of the persisted telemetry-rate override map.
	RatesFile string `json:"rates-file" mapstructure:"rates-file"`
}

// NewEngineOptions creates an EngineOptions object with default parameters.
func NewEngineOptions() *EngineOptions {
	return &EngineOptions{
		SystemID:        1,
		ComponentID:     1,
		GcsSystemID:     255,
		GcsComponentID:  190,
		Transport:       "udp",
		UdpAddr:         "0.0.0.0:14550",
		AckPollInterval: 100 * time.Millisecond,
		AckTimeout:      5 * time.Second,
		CountInterval:   250 * time.Millisecond,
		ItemInterval:    250 * time.Millisecond,
		TransferTimeout: 30 * time.Second,
		DuplicateWindow: time.Second,
		RatesFile:       "message-rates.json",
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *EngineOptions) Validate() []error {
	errors := []error{}

	switch o.Transport {
	case "udp", "mqtt":
	default:
		errors = append(errors, fmt.Errorf("unknown transport %q (want 'udp' or 'mqtt')", o.Transport))
	}

	if o.Transport == "udp" {
		if err := ValidateAddress(o.UdpAddr); err != nil {
			errors = append(errors, err)
		}
	}

	if o.AckPollInterval <= 0 || o.AckTimeout <= 0 || o.TransferTimeout <= 0 {
		errors = append(errors, fmt.Errorf("engine intervals and timeouts must be positive"))
	}

	return errors
}

// AddFlags adds flags related to the protocol engine to the specified FlagSet.
func (o *EngineOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.Uint8Var(&o.SystemID, "engine.system-id", o.SystemID, "System id of the primary vehicle identity.")
	fs.Uint8Var(&o.ComponentID, "engine.component-id", o.ComponentID, "Component id of the primary vehicle identity.")
	fs.Uint8Var(&o.GcsSystemID, "engine.gcs-system-id", o.GcsSystemID, "System id this ground station uses on the link.")
	fs.Uint8Var(&o.GcsComponentID, "engine.gcs-component-id", o.GcsComponentID, "Component id this ground station uses on the link.")

	fs.StringVar(&o.Transport, "engine.transport", o.Transport, "Vehicle link transport ('udp' or 'mqtt').")
	fs.StringVar(&o.UdpAddr, "engine.udp-addr", o.UdpAddr, "Local listen address for the UDP link.")

	fs.DurationVar(&o.AckPollInterval, "engine.ack-poll-interval", o.AckPollInterval, "Polling cadence while waiting for a command ack.")
	fs.DurationVar(&o.AckTimeout, "engine.ack-timeout", o.AckTimeout, "Deadline for a command acknowledgment.")
	fs.DurationVar(&o.CountInterval, "engine.count-interval", o.CountInterval, "Re-send cadence for the mission list request.")
	fs.DurationVar(&o.ItemInterval, "engine.item-interval", o.ItemInterval, "Re-request cadence for an unanswered mission item.")
	fs.DurationVar(&o.TransferTimeout, "engine.transfer-timeout", o.TransferTimeout, "Deadline for an entire mission transfer session.")
	fs.DurationVar(&o.DuplicateWindow, "engine.duplicate-window", o.DuplicateWindow, "Suppression window for duplicate mission item requests.")

	fs.StringVar(&o.RatesFile, "engine.rates-file", o.RatesFile, "Path of the persisted telemetry-rate override map.")
}
