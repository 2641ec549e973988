package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskwire_hub_connected_clients",
		Help: "Number of currently connected websocket subscribers.",
	})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskwire_hub_events_published_total",
		Help: "Events accepted for broadcast, by event type.",
	}, []string{"type"})

	eventsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskwire_hub_events_sent_total",
		Help: "Events delivered to subscriber send queues.",
	})

	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskwire_hub_events_dropped_total",
		Help: "Events dropped because a subscriber queue was full.",
	})
)
