package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks live websocket connections across all rooms.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatbox_ws_connections_active",
		Help: "Number of active websocket connections.",
	})

	// MessagesTotal counts chat messages accepted from clients.
	MessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatbox_messages_total",
		Help: "Total chat messages received and persisted.",
	})

	// BroadcastDropsTotal counts members disconnected for falling behind fanout.
	BroadcastDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatbox_broadcast_drops_total",
		Help: "Broadcast deliveries abandoned because the member's send buffer was full.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
