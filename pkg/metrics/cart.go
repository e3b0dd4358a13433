package metrics

import "github.com/prometheus/client_golang/prometheus"

// CartMetrics counts cart mutations and failed writes to cart storage.
type CartMetrics struct {
	operations      *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "operations_total",
		Help:      "Cart mutations by operation.",
	}, []string{"op"})
	storageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "storage_failures_total",
		Help:      "Cart storage reads/writes that failed and were swallowed.",
	}, []string{"op"})
	reg.MustRegister(operations, storageFailures)
	return &CartMetrics{operations: operations, storageFailures: storageFailures}
}

// IncOperation counts a cart mutation (add, update, remove, clear).
func (c *CartMetrics) IncOperation(op string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncStorageFailure counts a failed load, save or delete.
func (c *CartMetrics) IncStorageFailure(op string) {
	if c == nil || c.storageFailures == nil {
		return
	}
	c.storageFailures.WithLabelValues(normalizeLabel(op)).Inc()
}
