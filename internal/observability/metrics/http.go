package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "outlet"

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	*resilienceCollectors

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatRequestsTotal     *prometheus.CounterVec
	chatRetrievedRecords  *prometheus.HistogramVec
	chatNoRecordsTotal    *prometheus.CounterVec
	chatFallthroughTotal  *prometheus.CounterVec
	chatCompletionFailure *prometheus.CounterVec
	chatDuration          *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total answered chat queries by classified intent.",
		},
		[]string{"service", "intent"},
	)
	chatRetrievedRecords := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "retrieved_records",
			Help:      "Distribution of outlet records retrieved per chat query.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"service", "intent"},
	)
	chatNoRecordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "no_records_total",
			Help:      "Total chat queries answered without any retrieved outlet.",
		},
		[]string{"service", "intent"},
	)
	chatFallthroughTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "structured_fallthrough_total",
			Help:      "Total latest-closing queries answered generatively because no closing time parsed.",
		},
		[]string{"service"},
	)
	chatCompletionFailure := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "completion_failures_total",
			Help:      "Total generative answers that degraded to an error string.",
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat pipeline duration in seconds by intent.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "intent"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		chatRetrievedRecords,
		chatNoRecordsTotal,
		chatFallthroughTotal,
		chatCompletionFailure,
		chatDuration,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		resilienceCollectors:  newResilienceCollectors(registry, service),
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		chatRequestsTotal:     chatRequestsTotal,
		chatRetrievedRecords:  chatRetrievedRecords,
		chatNoRecordsTotal:    chatNoRecordsTotal,
		chatFallthroughTotal:  chatFallthroughTotal,
		chatCompletionFailure: chatCompletionFailure,
		chatDuration:          chatDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath keeps label cardinality bounded.
func normalizePath(path string) string {
	switch path {
	case "/healthz", "/metrics", "/outlets", "/outlets/export.xlsx", "/chatbot":
		return path
	default:
		return "other"
	}
}

// ChatObservation is what one answered chat query reports.
type ChatObservation struct {
	Intent           string
	Records          int
	FellThrough      bool
	CompletionFailed bool
	Duration         time.Duration
}

func (m *HTTPServerMetrics) RecordChat(service string, obs ChatObservation) {
	intent := obs.Intent
	if intent == "" {
		intent = "unknown"
	}
	m.chatRequestsTotal.WithLabelValues(service, intent).Inc()
	m.chatRetrievedRecords.WithLabelValues(service, intent).Observe(float64(obs.Records))
	m.chatDuration.WithLabelValues(service, intent).Observe(obs.Duration.Seconds())
	if obs.Records == 0 {
		m.chatNoRecordsTotal.WithLabelValues(service, intent).Inc()
	}
	if obs.FellThrough {
		m.chatFallthroughTotal.WithLabelValues(service).Inc()
	}
	if obs.CompletionFailed {
		m.chatCompletionFailure.WithLabelValues(service).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
