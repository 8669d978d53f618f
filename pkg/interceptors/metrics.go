package interceptors

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/tendril/pkg/dispatch"
	"github.com/aretw0/tendril/pkg/model"
)

// startedAtKey is the request attribute carrying the dispatch start time
// between the request and response sides.
const startedAtKey = "tendril.metrics.startedAt"

// Metrics instruments dispatches with Prometheus meters. Requests are
// counted when they enter the pipeline; durations are observed on the
// response side, so failed dispatches contribute to the request count but
// not to the duration histogram.
type Metrics struct {
	registry       *prometheus.Registry
	requestsTotal  *prometheus.CounterVec
	handledTotal   *prometheus.CounterVec
	handleDuration *prometheus.HistogramVec
}

// NewMetrics creates a Prometheus registry with the standard dispatch
// meters.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tendril_requests_total",
		Help: "Total number of requests entering the dispatch pipeline.",
	}, []string{"request_type", "intent"})

	handledTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tendril_handled_total",
		Help: "Total number of requests that produced a response.",
	}, []string{"request_type", "intent"})

	handleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tendril_handle_duration_seconds",
		Help:    "Duration from pipeline entry to response in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"request_type"})

	reg.MustRegister(requestsTotal, handledTotal, handleDuration)

	return &Metrics{
		registry:       reg,
		requestsTotal:  requestsTotal,
		handledTotal:   handledTotal,
		handleDuration: handleDuration,
	}
}

// Registry returns the registry holding the dispatch meters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the meters in exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Request returns the request-side interceptor.
func (m *Metrics) Request() dispatch.RequestInterceptor {
	return dispatch.RequestInterceptorFunc(func(ctx context.Context, input *dispatch.HandlerInput) error {
		envelope := input.RequestEnvelope()
		m.requestsTotal.WithLabelValues(envelope.RequestType(), envelope.IntentName()).Inc()
		input.Attributes().RequestAttributes()[startedAtKey] = time.Now()
		return nil
	})
}

// Response returns the response-side interceptor. It observes and passes
// the response through untouched.
func (m *Metrics) Response() dispatch.ResponseInterceptor {
	return dispatch.ResponseInterceptorFunc(func(ctx context.Context, input *dispatch.HandlerInput, resp *model.Response) (*model.Response, error) {
		envelope := input.RequestEnvelope()
		m.handledTotal.WithLabelValues(envelope.RequestType(), envelope.IntentName()).Inc()
		if startedAt, ok := input.Attributes().RequestAttributes()[startedAtKey].(time.Time); ok {
			m.handleDuration.WithLabelValues(envelope.RequestType()).Observe(time.Since(startedAt).Seconds())
		}
		return resp, nil
	})
}
