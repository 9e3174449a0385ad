package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus instrumentation shared by every venue's
// transport.Client, grounded on MetricsRegistry's histogram/counter style.
type Metrics struct {
	Latency        *prometheus.HistogramVec
	HFTCompliant   *prometheus.CounterVec
	HFTNonCompliant *prometheus.CounterVec
}

// hftComplianceThreshold is the sub-50ms latency bar REST calls are expected
// to clear for the arbitrage orchestrator's entry/exit decisions to remain
// timely.
const hftComplianceThreshold = 50 * time.Millisecond

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xvenue_rest_latency_ms",
				Help:    "REST call round-trip latency in milliseconds by venue and operation",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
			[]string{"venue", "op"},
		),
		HFTCompliant: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xvenue_rest_hft_compliant_total",
				Help: "REST calls completing within the sub-50ms HFT compliance threshold",
			},
			[]string{"venue", "op"},
		),
		HFTNonCompliant: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xvenue_rest_hft_noncompliant_total",
				Help: "REST calls exceeding the sub-50ms HFT compliance threshold",
			},
			[]string{"venue", "op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Latency, m.HFTCompliant, m.HFTNonCompliant)
	}
	return m
}

func (m *Metrics) ObserveLatency(venue, op string, elapsed time.Duration) {
	m.Latency.WithLabelValues(venue, op).Observe(float64(elapsed.Microseconds()) / 1000.0)
	if elapsed <= hftComplianceThreshold {
		m.HFTCompliant.WithLabelValues(venue, op).Inc()
	} else {
		m.HFTNonCompliant.WithLabelValues(venue, op).Inc()
	}
}
