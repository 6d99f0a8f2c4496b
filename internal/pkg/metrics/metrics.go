package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all engine metrics. The status server exposes it on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// FramesReceivedTotal counts inbound frames by decode outcome.
	FramesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundlink_frames_received_total",
			Help: "Total number of inbound link frames.",
		},
		[]string{"outcome"}, // decoded/dropped
	)

	// MessagesDispatchedTotal counts decoded messages by type name.
	MessagesDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundlink_messages_dispatched_total",
			Help: "Total number of decoded messages dispatched to handlers.",
		},
		[]string{"type"},
	)

	// CommandsSentTotal counts command transactions by outcome.
	CommandsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundlink_commands_sent_total",
			Help: "Total number of command transactions.",
		},
		[]string{"outcome"}, // accepted/rejected/timeout
	)

	// TransfersTotal counts mission transfer sessions by direction and outcome.
	TransfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundlink_mission_transfers_total",
			Help: "Total number of mission transfer sessions.",
		},
		[]string{"direction", "outcome"},
	)

	// ParamsReceivedTotal counts PARAM_VALUE messages applied to the catalog.
	ParamsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groundlink_params_received_total",
			Help: "Total number of parameter values received.",
		},
	)

	// VehicleOnline reports whether a heartbeat arrived recently.
	VehicleOnline = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groundlink_vehicle_online",
			Help: "Whether the primary vehicle identity is heartbeating (1/0).",
		},
	)
)

func init() {
	Registry.MustRegister(
		FramesReceivedTotal,
		MessagesDispatchedTotal,
		CommandsSentTotal,
		TransfersTotal,
		ParamsReceivedTotal,
		VehicleOnline,
	)
}
