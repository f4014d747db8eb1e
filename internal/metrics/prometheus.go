package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "listingsheet"

// PrometheusRecorder implements Recorder on a private Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	recordOps        *prometheus.CounterVec
	accessDenied     *prometheus.CounterVec
	renderDuration   *prometheus.HistogramVec
	renderFailures   *prometheus.CounterVec
	archivesUploaded prometheus.Counter
	sessions         *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewPrometheus creates a recorder with process and Go runtime collectors registered.
func NewPrometheus() *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	p := &PrometheusRecorder{
		registry: registry,
		recordOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_operations_total",
			Help:      "Successful record writes by operation.",
		}, []string{"op"}),
		accessDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_denied_total",
			Help:      "Requests rejected by the authorization gate.",
		}, []string{"reason"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Document render time by output format.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"format"}),
		renderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Failed document renders by output format.",
		}, []string{"format"}),
		archivesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archives_uploaded_total",
			Help:      "PDF exports stored in object storage.",
		}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Session lifecycle events.",
		}, []string{"event"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.recordOps,
		p.accessDenied,
		p.renderDuration,
		p.renderFailures,
		p.archivesUploaded,
		p.sessions,
		p.httpRequests,
		p.httpDuration,
	)

	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusRecorder) IncRecordCreated() { p.recordOps.WithLabelValues("create").Inc() }
func (p *PrometheusRecorder) IncRecordUpdated() { p.recordOps.WithLabelValues("update").Inc() }
func (p *PrometheusRecorder) IncRecordDeleted() { p.recordOps.WithLabelValues("delete").Inc() }

func (p *PrometheusRecorder) IncAccessDenied(reason string) {
	p.accessDenied.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) ObserveRender(format string, duration time.Duration, err error) {
	p.renderDuration.WithLabelValues(format).Observe(duration.Seconds())
	if err != nil {
		p.renderFailures.WithLabelValues(format).Inc()
	}
}

func (p *PrometheusRecorder) IncArchiveUploaded() { p.archivesUploaded.Inc() }
func (p *PrometheusRecorder) IncSessionCreated() { p.sessions.WithLabelValues("created").Inc() }
func (p *PrometheusRecorder) IncSessionRevoked() { p.sessions.WithLabelValues("revoked").Inc() }

func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
