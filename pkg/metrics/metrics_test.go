package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestOrderMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.IncCartMutation("add")
	m.IncCartMutation("add")
	m.IncCartMutation("")
	m.IncSubmitted("delivery")
	m.IncFailed("validation")
	m.ObserveSend("whatsapp", 120*time.Millisecond)
	m.SubscriptionOpened()
	m.SubscriptionOpened()
	m.SubscriptionClosed()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	expectCounter(t, mfs, "cart_mutations_total", "op", "add", 2)
	expectCounter(t, mfs, "cart_mutations_total", "op", "unknown", 1)
	expectCounter(t, mfs, "orders_submitted_total", "mode", "delivery", 1)
	expectCounter(t, mfs, "orders_failed_total", "reason", "validation", 1)

	if got, err := fetchHistogramSum(mfs, "order_send_duration_seconds", "driver", "whatsapp"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	gauge := findMetricFamily(mfs, "catalog_subscriptions_active")
	if gauge == nil || gauge.GetMetric()[0].GetGauge().GetValue() != 1 {
		t.Fatalf("expected one active subscription, got %v", gauge)
	}
}

func TestNilRecordersAreNoops(t *testing.T) {
	var m *OrderMetrics
	m.IncCartMutation("add")
	m.SubscriptionOpened()
	NewOrderMetrics(nil).IncSubmitted("pickup")

	var h *HTTPMetrics
	h.Observe(http.MethodGet, "/", 200, time.Millisecond)
	NewHTTPMetrics(nil).Observe(http.MethodGet, "/", 200, time.Millisecond)
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTPMetrics(reg)
	h.Observe(http.MethodPost, "/api/v1/cart/items", http.StatusCreated, 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	expectCounter(t, mfs, "http_requests_total", "status", "201", 1)
	expectCounter(t, mfs, "http_requests_total", "route", "/api/v1/cart/items", 1)
}

func expectCounter(t *testing.T, mfs []*dto.MetricFamily, name, label, value string, want float64) {
	t.Helper()
	got, err := fetchCounterValue(mfs, name, label, value)
	if err != nil {
		t.Fatalf("fetch %s: %v", name, err)
	}
	if got != want {
		t.Fatalf("expected %s{%s=%q}=%v, got %v", name, label, value, want, got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, lp := range labels {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}
