package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records cart activity and order hand-offs.
type OrderMetrics struct {
	cartMutations *prometheus.CounterVec
	submitted     *prometheus.CounterVec
	failed        *prometheus.CounterVec
	sendDuration  *prometheus.HistogramVec
	subscriptions prometheus.Gauge
}

// NewOrderMetrics registers the order metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Orders handed to the messaging collaborator.",
	}, []string{"mode"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Checkout attempts that did not reach the messaging collaborator.",
	}, []string{"reason"})
	sendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_send_duration_seconds",
		Help:    "Time spent handing an order message to the messenger.",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver"})
	subscriptions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_subscriptions_active",
		Help: "Open catalog snapshot subscriptions.",
	})
	reg.MustRegister(cartMutations, submitted, failed, sendDuration, subscriptions)
	return &OrderMetrics{
		cartMutations: cartMutations,
		submitted:     submitted,
		failed:        failed,
		sendDuration:  sendDuration,
		subscriptions: subscriptions,
	}
}

// IncCartMutation counts one add/remove/clear.
func (m *OrderMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncSubmitted counts one delivered order message.
func (m *OrderMetrics) IncSubmitted(mode string) {
	if m == nil || m.submitted == nil {
		return
	}
	m.submitted.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncFailed counts a checkout that stopped before or during the send.
func (m *OrderMetrics) IncFailed(reason string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveSend records how long the messenger took.
func (m *OrderMetrics) ObserveSend(driver string, d time.Duration) {
	if m == nil || m.sendDuration == nil {
		return
	}
	m.sendDuration.WithLabelValues(normalizeLabel(driver)).Observe(d.Seconds())
}

// SubscriptionOpened bumps the active subscription gauge.
func (m *OrderMetrics) SubscriptionOpened() {
	if m == nil || m.subscriptions == nil {
		return
	}
	m.subscriptions.Inc()
}

// SubscriptionClosed lowers the active subscription gauge.
func (m *OrderMetrics) SubscriptionClosed() {
	if m == nil || m.subscriptions == nil {
		return
	}
	m.subscriptions.Dec()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
