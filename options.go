package webtrace

import (
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

/*
	Tracer options
*/

// TracerOption configures a Tracer built by NewTracer.
type TracerOption func(*tracerConfig)

type tracerConfig struct {
	recorder   SpanRecorder
	propagator Propagator
	clock      clockz.Clock
	tags       opentracing.Tags
}

func defaultTracerConfig() *tracerConfig {
	return &tracerConfig{
		recorder:   noopRecorder{},
		propagator: DefaultPropagator(),
		clock:      clockz.RealClock,
		tags:       opentracing.Tags{},
	}
}

// WithRecorder sets where finished spans are delivered.
func WithRecorder(recorder SpanRecorder) TracerOption {
	return func(c *tracerConfig) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

// WithTracerPropagator sets the propagator used by Tracer.Inject and
// Tracer.Extract.
func WithTracerPropagator(propagator Propagator) TracerOption {
	return func(c *tracerConfig) {
		if propagator != nil {
			c.propagator = propagator
		}
	}
}

// WithClock sets the clock spans are timed with.
func WithClock(clock clockz.Clock) TracerOption {
	return func(c *tracerConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithTracerTags adds tags to every span started by the tracer.
func WithTracerTags(tags opentracing.Tags) TracerOption {
	return func(c *tracerConfig) {
		for k, v := range tags {
			c.tags[k] = v
		}
	}
}

/*
	Instrumentation options
*/

// Option configures an Instrumentation built by New.
type Option func(*Instrumentation)

// WithPin pins the instrumentation to p instead of the global pin.
func WithPin(p *Pin) Option {
	return func(i *Instrumentation) {
		i.pin = func() *Pin { return p }
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(i *Instrumentation) {
		i.cfg = cfg
	}
}

// WithServiceName sets the service tagged on every span. It takes
// precedence over the pin's service.
func WithServiceName(service string) Option {
	return func(i *Instrumentation) {
		i.cfg.ServiceName = service
	}
}

// WithDistributedTracing toggles extraction of inbound trace headers.
func WithDistributedTracing(enabled bool) Option {
	return func(i *Instrumentation) {
		i.cfg.DistributedTracing = enabled
	}
}

// WithAnalyticsSampleRate enables analytics and sets the rate tagged on
// request spans.
func WithAnalyticsSampleRate(rate float64) Option {
	return func(i *Instrumentation) {
		i.cfg.AnalyticsEnabled = true
		i.cfg.AnalyticsSampleRate = rate
	}
}

// WithTraceHeaders sets the request/response headers copied onto request
// spans.
func WithTraceHeaders(headers ...string) Option {
	return func(i *Instrumentation) {
		i.cfg.TraceHeaders = append([]string(nil), headers...)
	}
}

// WithPropagator sets the header format used to extract inbound contexts.
func WithPropagator(propagator Propagator) Option {
	return func(i *Instrumentation) {
		if propagator != nil {
			i.propagator = propagator
		}
	}
}

// WithLogger sets the logger used for debug records.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Instrumentation) {
		if logger != nil {
			i.logger = logger
		}
	}
}
