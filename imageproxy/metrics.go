package imageproxy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts cache behaviour and placeholder fallbacks.
type Metrics struct {
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Fallbacks *prometheus.CounterVec
	Duration  prometheus.Histogram
}

// NewMetrics registers the proxy collectors on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrapedash_image_cache_hits_total",
			Help: "Image requests answered from cache.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrapedash_image_cache_misses_total",
			Help: "Image requests that went upstream.",
		}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrapedash_image_fallbacks_total",
			Help: "Image requests answered with the placeholder.",
		}, []string{"reason"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scrapedash_image_fetch_duration_seconds",
			Help:    "Upstream image fetch latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if registry != nil {
		registry.MustRegister(m.Hits, m.Misses, m.Fallbacks, m.Duration)
	}
	return m
}

func (m *Metrics) hit() {
	if m != nil {
		m.Hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.Misses.Inc()
	}
}

func (m *Metrics) fallback(reason string) {
	if m != nil {
		m.Fallbacks.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) observe(d time.Duration) {
	if m != nil {
		m.Duration.Observe(d.Seconds())
	}
}
