package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prediction outcomes reported on aq_predictions_total.
const (
	OutcomeSuccess  = "success"
	OutcomeUnloaded = "model_not_loaded"
	OutcomeFailed   = "inference_failed"
	OutcomeFallback = "fallback_input"
)

const (
	namespace        = "aq"
	inferenceSubsys  = "inference"
	preprocessSubsys = "preprocess"
)

// Recorder holds all Prometheus collectors exported by the service.
type Recorder struct {
	registry         *prometheus.Registry
	predictions      *prometheus.CounterVec
	warnings         *prometheus.CounterVec
	fallbacks        prometheus.Counter
	inferenceLatency prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
	modelLoaded      prometheus.Gauge
}

// New creates a private registry and registers every collector on it.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Prediction requests handled by the inference wrapper",
			},
			[]string{"outcome"},
		),
		warnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: preprocessSubsys,
				Name:      "warnings_total",
				Help:      "Recoverable preprocessing anomalies resolved with a fallback value",
			},
			[]string{"kind"},
		),
		fallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: preprocessSubsys,
				Name:      "zero_vector_fallbacks_total",
				Help:      "Requests whose feature vector was replaced by the all-zero fallback",
			},
		),
		inferenceLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: inferenceSubsys,
				Name:      "latency_ms",
				Help:      "Latency of encode plus forward pass in milliseconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_latency_ms",
				Help:      "HTTP request latency in milliseconds",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
			[]string{"method", "route"},
		),
		modelLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_loaded",
				Help:      "1 when a model artifact was loaded at startup",
			},
		),
	}
}

// ObservePrediction counts a finished prediction and its latency.
func (r *Recorder) ObservePrediction(outcome string, latency time.Duration) {
	if r == nil {
		return
	}
	r.predictions.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeFallback {
		r.inferenceLatency.Observe(float64(latency.Microseconds()) / 1000)
	}
}

// IncWarning counts one preprocessing anomaly of the given kind.
func (r *Recorder) IncWarning(kind string) {
	if r == nil {
		return
	}
	r.warnings.WithLabelValues(kind).Inc()
}

// IncFallback counts one zero-vector fallback.
func (r *Recorder) IncFallback() {
	if r == nil {
		return
	}
	r.fallbacks.Inc()
}

// SetModelLoaded mirrors the wrapper state.
func (r *Recorder) SetModelLoaded(loaded bool) {
	if r == nil {
		return
	}
	if loaded {
		r.modelLoaded.Set(1)
		return
	}
	r.modelLoaded.Set(0)
}

// ObserveHTTP records one served request.
func (r *Recorder) ObserveHTTP(method, route string, status int, latency time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, route).Observe(float64(latency.Milliseconds()))
}

// Handler exposes the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry is used by tests to gather values.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
