package webtrace

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
)

// ActiveSpanContext returns the context of the span active in ctx, or nil.
func ActiveSpanContext(ctx context.Context) opentracing.SpanContext {
	if span := opentracing.SpanFromContext(ctx); span != nil {
		return span.Context()
	}
	return nil
}

// WithParentContext makes span the ambient parent for spans started from
// the returned context.
func WithParentContext(ctx context.Context, span opentracing.Span) context.Context {
	return opentracing.ContextWithSpan(ctx, span)
}

// GetRecorder returns the recorder of a webtrace Tracer. Other tracers emit
// an EventUnsupportedTracer and yield nil.
func GetRecorder(tracer opentracing.Tracer) SpanRecorder {
	t, ok := tracer.(*Tracer)
	if !ok {
		emitEvent(newEventUnsupportedTracer(tracer))
		return nil
	}
	return t.Recorder()
}
