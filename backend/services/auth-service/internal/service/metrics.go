package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts authentication attempts. A nil *Metrics records nothing.
type Metrics struct {
	logins *prometheus.CounterVec
}

// NewMetrics registers the auth collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by account kind and outcome.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(m.logins)
	return m
}

func (m *Metrics) login(kind string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.logins.WithLabelValues(kind, result).Inc()
}
