// Package webtraceprom exports span counts and durations as Prometheus
// metrics.
package webtraceprom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lightstep/webtrace-go"
)

// DefaultNamespace prefixes the metric names unless WithNamespace is given.
const DefaultNamespace = "webtrace"

// Recorder is a webtrace.SpanRecorder that counts and times spans before
// handing them to the next recorder.
type Recorder struct {
	next webtrace.SpanRecorder

	spans    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Option configures a Recorder.
type Option func(*config)

type config struct {
	namespace string
	buckets   []float64
}

// WithNamespace sets the metric namespace.
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.namespace = namespace
	}
}

// WithBuckets sets the duration histogram buckets, in seconds.
func WithBuckets(buckets ...float64) Option {
	return func(c *config) {
		c.buckets = buckets
	}
}

// NewRecorder registers the span metrics with reg and returns a recorder
// forwarding to next, which may be nil.
func NewRecorder(reg prometheus.Registerer, next webtrace.SpanRecorder, opts ...Option) *Recorder {
	c := &config{
		namespace: DefaultNamespace,
		buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}
	for _, opt := range opts {
		opt(c)
	}

	factory := promauto.With(reg)
	return &Recorder{
		next: next,
		spans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: c.namespace,
				Name:      "spans_total",
				Help:      "Total number of finished spans",
			},
			[]string{"operation", "resource", "error"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: c.namespace,
				Name:      "span_duration_seconds",
				Help:      "Span duration in seconds",
				Buckets:   c.buckets,
			},
			[]string{"operation", "resource"},
		),
	}
}

// RecordSpan implements webtrace.SpanRecorder.
func (r *Recorder) RecordSpan(span webtrace.RawSpan) {
	resource := span.Resource()
	failed := "false"
	if v, _ := span.Tags["error"].(bool); v {
		failed = "true"
	}
	r.spans.WithLabelValues(span.Operation, resource, failed).Inc()
	r.duration.WithLabelValues(span.Operation, resource).Observe(span.Duration.Seconds())

	if r.next != nil {
		r.next.RecordSpan(span)
	}
}
