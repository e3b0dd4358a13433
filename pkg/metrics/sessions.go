package metrics

import "github.com/prometheus/client_golang/prometheus"

type SessionMetrics struct {
	active  prometheus.Gauge
	evicted prometheus.Counter
}

func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	if reg == nil {
		return &SessionMetrics{}
	}
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Sessions currently held in memory.",
	})
	evicted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "evicted_total",
		Help:      "Idle sessions evicted by the sweeper.",
	})
	reg.MustRegister(active, evicted)
	return &SessionMetrics{active: active, evicted: evicted}
}

func (s *SessionMetrics) SetActive(n int) {
	if s == nil || s.active == nil {
		return
	}
	s.active.Set(float64(n))
}

func (s *SessionMetrics) AddEvicted(n int) {
	if s == nil || s.evicted == nil || n <= 0 {
		return
	}
	s.evicted.Add(float64(n))
}
