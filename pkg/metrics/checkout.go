package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order placement outcomes.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	placed    prometheus.Counter
	failed    *prometheus.CounterVec
	unitsSold prometheus.Counter
	lines     *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of order placement attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_placed_total",
		Help: "Orders successfully placed.",
	})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_failed_total",
		Help: "Order placement attempts that were rejected, by error code.",
	}, []string{"reason"})
	unitsSold := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_units_sold_total",
		Help: "Inventory units decremented by successful checkouts.",
	})
	lines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_lines_total",
		Help: "Cart lines processed during checkout, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, placed, failed, unitsSold, lines)
	return &CheckoutMetrics{
		duration:  duration,
		placed:    placed,
		failed:    failed,
		unitsSold: unitsSold,
		lines:     lines,
	}
}

// ObservePlaced records a successful checkout and the units it consumed.
func (c *CheckoutMetrics) ObservePlaced(elapsed time.Duration, units int) {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.Inc()
	c.unitsSold.Add(float64(units))
	c.duration.WithLabelValues("placed").Observe(elapsed.Seconds())
}

// ObserveFailed records a rejected checkout under the given reason code.
func (c *CheckoutMetrics) ObserveFailed(elapsed time.Duration, reason string) {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.WithLabelValues(normalizeLabel(reason)).Inc()
	c.duration.WithLabelValues("failed").Observe(elapsed.Seconds())
}

// IncLine counts a processed cart line by outcome.
func (c *CheckoutMetrics) IncLine(outcome string) {
	if c == nil || c.lines == nil {
		return
	}
	c.lines.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
