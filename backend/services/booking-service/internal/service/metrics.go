package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"xpointconnect/backend/services/booking-service/internal/models"
)

// Metrics counts booking lifecycle events. A nil *Metrics records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	conflicts   prometheus.Counter
	cacheErrors *prometheus.CounterVec
}

// NewMetrics registers the booking collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking state transitions by target status.",
		}, []string{"status"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_version_conflicts_total",
			Help: "Booking writes retried after a concurrent modification.",
		}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_checkin_cache_errors_total",
			Help: "Failed check-in cache operations.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.transitions, m.conflicts, m.cacheErrors)
	return m
}

func (m *Metrics) transition(to models.BookingStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(to)).Inc()
}

func (m *Metrics) conflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *Metrics) cacheError(op string) {
	if m == nil {
		return
	}
	m.cacheErrors.WithLabelValues(op).Inc()
}
