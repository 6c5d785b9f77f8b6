package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections is the number of live websocket connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huntlink_active_connections",
		Help: "Number of live websocket connections",
	})

	// EventsTotal counts inbound events by type.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntlink_events_total",
		Help: "Inbound websocket events processed, by event type",
	}, []string{"type"})

	// BroadcastsTotal counts individual event deliveries fanned out to rooms.
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huntlink_broadcast_deliveries_total",
		Help: "Event deliveries fanned out to room subscribers",
	})

	// StaleSessionsSwept counts sessions demoted by the periodic sweep.
	StaleSessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huntlink_stale_sessions_swept_total",
		Help: "Sessions marked inactive by the stale-session sweep",
	})
)
