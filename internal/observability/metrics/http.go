package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docclf"

// Metrics owns the process registry. HTTP collectors live here, the
// classification pipeline collectors in pipeline.go.
type Metrics struct {
	service  string
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge

	pipeline
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		service:  service,
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"service", "method", "route", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			// Classification waits on the upstream model.
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"service", "method", "route"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Requests currently being served.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
		pipeline: newPipeline(service, factory),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware must wrap the ServeMux directly: the route label is read from
// the pattern the mux stores on the request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		rec := &responseStatus{ResponseWriter: w, code: http.StatusOK}
		began := time.Now()
		next.ServeHTTP(rec, r)

		route := routeLabel(r)
		m.latency.WithLabelValues(m.service, r.Method, route).Observe(time.Since(began).Seconds())
		m.requests.WithLabelValues(m.service, r.Method, route, strconv.Itoa(rec.code)).Inc()
	})
}

// routeLabel keeps document ids out of label values.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

type responseStatus struct {
	http.ResponseWriter
	code  int
	wrote bool
}

func (w *responseStatus) WriteHeader(code int) {
	if !w.wrote {
		w.code = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseStatus) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func (w *responseStatus) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
