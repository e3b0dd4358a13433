package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

type OrderMetrics struct {
	submitted *prometheus.CounterVec
	rejected  prometheus.Counter
	value     prometheus.Histogram
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "submitted_total",
		Help:      "Orders submitted, by order type.",
	}, []string{"order_type"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "rejected_total",
		Help:      "Order submissions rejected by validation.",
	})
	value := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "total_amount",
		Help:      "Order totals in store currency.",
		Buckets:   []float64{5, 10, 20, 35, 50, 75, 100, 150},
	})
	reg.MustRegister(submitted, rejected, value)
	return &OrderMetrics{submitted: submitted, rejected: rejected, value: value}
}

func (o *OrderMetrics) ObserveSubmitted(orderType string, total decimal.Decimal) {
	if o == nil || o.submitted == nil {
		return
	}
	o.submitted.WithLabelValues(normalizeLabel(orderType)).Inc()
	o.value.Observe(total.InexactFloat64())
}

func (o *OrderMetrics) IncRejected() {
	if o == nil || o.rejected == nil {
		return
	}
	o.rejected.Inc()
}
