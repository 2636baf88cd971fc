package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isgasho/roa/router"
	"github.com/isgasho/roa/status"
)

// MetricsConfig configures the metrics middleware.
type MetricsConfig struct {
	// Registerer receives the collectors. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// Namespace prefixes every metric name. Defaults to "roa".
	Namespace string

	// Buckets for the duration histogram. Defaults to
	// prometheus.DefBuckets.
	Buckets []float64
}

var metricLabels = []string{"method", "code", "kind"}

// MetricsMiddleware returns a middleware that counts requests and
// observes their duration, labelled by method, status code and status
// kind. It fails when the collectors cannot be registered, for example
// when the same namespace is registered twice.
func MetricsMiddleware(cfg MetricsConfig) (router.MiddlewareFunc, error) {
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "roa"
	}

	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of handled HTTP requests.",
	}, metricLabels)

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent handling HTTP requests.",
		Buckets:   buckets,
	}, metricLabels)

	if err := reg.Register(requests); err != nil {
		return nil, fmt.Errorf("metrics: register requests counter: %w", err)
	}

	if err := reg.Register(duration); err != nil {
		reg.Unregister(requests)
		return nil, fmt.Errorf("metrics: register duration histogram: %w", err)
	}

	return func(ctx *router.Context, next router.Next) error {
		start := time.Now()
		err := next()

		code := outcomeCode(ctx, err)
		labels := prometheus.Labels{
			"method": ctx.Method(),
			"code":   strconv.Itoa(code),
			"kind":   status.Classify(code).String(),
		}

		requests.With(labels).Inc()
		duration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}, nil
}

// MetricsHandler returns a leaf that serves the metrics gathered by g in
// the Prometheus exposition format.
func MetricsHandler(g prometheus.Gatherer) router.HandlerFunc {
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})

	return func(ctx *router.Context) error {
		h.ServeHTTP(ctx.Response, ctx.Request)
		return nil
	}
}
