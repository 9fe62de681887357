package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	roomsActive prometheus.Gauge
	wsEvents    *prometheus.CounterVec
	broadcasts  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		roomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rooms_active",
			Help: "Number of live rooms.",
		}),
		wsEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ws_events_total",
			Help: "Inbound websocket events by type.",
		}, []string{"event"}),
		broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ws_broadcasts_total",
			Help: "Payloads written to room members.",
		}),
	}
}
