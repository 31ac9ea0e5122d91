package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records counters for the storefront order pipeline.
type StoreMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	ordersCreated    prometheus.Counter
	payments         *prometheus.CounterVec
	stockRejections  prometheus.Counter
}

// NewStoreMetrics registers the storefront metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout order creation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders promoted from carts.",
	})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_total",
		Help: "Payment confirmations by result.",
	}, []string{"result"})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_stock_rejections_total",
		Help: "Cart mutations rejected for insufficient stock.",
	})
	reg.MustRegister(checkoutDuration, ordersCreated, payments, stockRejections)
	return &StoreMetrics{
		checkoutDuration: checkoutDuration,
		ordersCreated:    ordersCreated,
		payments:         payments,
		stockRejections:  stockRejections,
	}
}

// ObserveCheckout records a checkout attempt duration by outcome.
func (m *StoreMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncOrderCreated increments the created-orders counter.
func (m *StoreMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncPayment increments the payments counter for the given result.
func (m *StoreMetrics) IncPayment(result string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncStockRejection increments the insufficient-stock rejection counter.
func (m *StoreMetrics) IncStockRejection() {
	if m == nil || m.stockRejections == nil {
		return
	}
	m.stockRejections.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
