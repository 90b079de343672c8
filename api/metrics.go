package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the scrape metrics exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Scrapes counts finished scrapes. Labels: kind ("ok" or the failure kind)
	Scrapes *prometheus.CounterVec
	// Duration observes the scrape latency in seconds.
	Duration prometheus.Histogram
}

// NewMetrics creates the metrics on a dedicated registry so that several
// routers can coexist in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Scrapes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagemeta_scrapes_total",
				Help: "Total number of scrapes by outcome",
			},
			[]string{"kind"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pagemeta_scrape_duration_seconds",
				Help:    "Scrape duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	m.registry.MustRegister(m.Scrapes, m.Duration)
	return m
}

func (m *Metrics) observe(kind string, elapsed time.Duration) {
	m.Scrapes.WithLabelValues(kind).Inc()
	m.Duration.Observe(elapsed.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
