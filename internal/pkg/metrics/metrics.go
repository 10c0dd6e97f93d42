package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is the hub's metric registry, served on the HTTP /metrics endpoint.
var Registry = prometheus.NewRegistry()

var (
	// MessagesReceivedTotal counts inbound DMF messages by message type.
	MessagesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleethub_dmf_messages_received_total",
			Help: "Total number of inbound DMF messages by type.",
		},
		[]string{"type"},
	)

	// DeadLettersTotal counts messages routed to the dead-letter sink.
	DeadLettersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleethub_dmf_dead_letters_total",
			Help: "Total number of inbound DMF messages dead-lettered, by failure kind.",
		},
		[]string{"kind"}, // validation / not_found / illegal_transition
	)

	// CommandsSentTotal counts outbound device commands.
	CommandsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleethub_commands_sent_total",
			Help: "Total number of outbound commands by type (DOWNLOAD, DOWNLOAD_AND_INSTALL, CANCEL).",
		},
		[]string{"type"},
	)

	// ActionsTerminalTotal counts actions reaching a terminal state.
	ActionsTerminalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleethub_actions_terminal_total",
			Help: "Total number of actions reaching a terminal state, by final status.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(MessagesReceivedTotal)
	Registry.MustRegister(DeadLettersTotal)
	Registry.MustRegister(CommandsSentTotal)
	Registry.MustRegister(ActionsTerminalTotal)
}
