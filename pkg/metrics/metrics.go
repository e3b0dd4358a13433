package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "ishos"

// Metrics bundles every collector the storefront exports.
type Metrics struct {
	Cart     *CartMetrics
	Orders   *OrderMetrics
	Sessions *SessionMetrics
	HTTP     *HTTPMetrics
	Jobs     *JobMetrics
}

// New registers all collectors on reg. A nil registerer yields no-op
// collectors.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Cart:     NewCartMetrics(reg),
		Orders:   NewOrderMetrics(reg),
		Sessions: NewSessionMetrics(reg),
		HTTP:     NewHTTPMetrics(reg),
		Jobs:     NewJobMetrics(reg),
	}
}

// Nop returns collectors that record nothing.
func Nop() *Metrics {
	return New(nil)
}
