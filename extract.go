package webtrace

import (
	opentracing "github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// Extractor turns inbound request headers into the trace context a request
// span continues. It never fails: missing or malformed headers yield an
// empty SpanContext, which starts a new trace.
type Extractor struct {
	propagator Propagator
	enabled    bool
	logger     *zap.Logger
}

// NewExtractor returns an extractor using propagator. When distributed
// tracing is off, Extract does not look at the carrier at all.
func NewExtractor(propagator Propagator, distributedTracing bool, logger *zap.Logger) *Extractor {
	if propagator == nil {
		propagator = DefaultPropagator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		propagator: propagator,
		enabled:    distributedTracing,
		logger:     logger,
	}
}

// Enabled reports whether the extractor reads headers.
func (e *Extractor) Enabled() bool {
	return e.enabled
}

// Extract parses carrier with the configured propagator.
func (e *Extractor) Extract(carrier opentracing.TextMapReader) SpanContext {
	if !e.enabled || carrier == nil {
		return SpanContext{}
	}

	sc, err := e.propagator.Extract(carrier)
	switch {
	case err == nil:
		if c, ok := sc.(SpanContext); ok {
			return c
		}
		e.logger.Debug("propagator returned a foreign span context, starting a new trace")
	case err == opentracing.ErrSpanContextNotFound:
	default:
		e.logger.Debug("ignoring distributed trace headers", zap.Error(err))
		emitEvent(newEventExtractionFailed(err))
	}
	return SpanContext{}
}
