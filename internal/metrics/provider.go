// Package metrics exposes Prometheus counters for the dashboard. A disabled
// provider is a no-op so callers never branch on configuration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Provider interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncUploads(result string)
	ObserveBuildDuration(duration time.Duration)
	IncChartsMissing(chart string)
	IncStoreHits()
	IncStoreMisses()
	Handler() http.Handler
}

// Upload results
const (
	UploadOK       = "ok"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

type PrometheusProvider struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploadsTotal    *prometheus.CounterVec
	buildDuration   prometheus.Histogram
	chartsMissing   *prometheus.CounterVec
	storeHits       prometheus.Counter
	storeMisses     prometheus.Counter
}

// NewProvider registers the collectors on a private registry
func NewProvider(enabled bool) Provider {
	if !enabled {
		return &noopMetrics{}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &PrometheusProvider{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instviz_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "instviz_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instviz_uploads_total",
			Help: "Uploaded spreadsheets by result",
		}, []string{"result"}),

		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "instviz_report_build_seconds",
			Help:    "Time to evaluate and render one report",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		chartsMissing: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instviz_charts_missing_total",
			Help: "Charts skipped because a required column was absent",
		}, []string{"chart"}),

		storeHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "instviz_report_store_hits_total",
			Help: "Report lookups served from the store",
		}),

		storeMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "instviz_report_store_misses_total",
			Help: "Report lookups that found nothing",
		}),
	}
}

func (m *PrometheusProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *PrometheusProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *PrometheusProvider) IncUploads(result string) {
	m.uploadsTotal.WithLabelValues(result).Inc()
}

func (m *PrometheusProvider) ObserveBuildDuration(duration time.Duration) {
	m.buildDuration.Observe(duration.Seconds())
}

func (m *PrometheusProvider) IncChartsMissing(chart string) {
	m.chartsMissing.WithLabelValues(chart).Inc()
}

func (m *PrometheusProvider) IncStoreHits() {
	m.storeHits.Inc()
}

func (m *PrometheusProvider) IncStoreMisses() {
	m.storeMisses.Inc()
}

func (m *PrometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// noopMetrics is used when metrics are disabled
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncUploads(_ string)                              {}
func (n *noopMetrics) ObserveBuildDuration(_ time.Duration)             {}
func (n *noopMetrics) IncChartsMissing(_ string)                        {}
func (n *noopMetrics) IncStoreHits()                                    {}
func (n *noopMetrics) IncStoreMisses()                                  {}
func (n *noopMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
