package webtrace

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// TagsFunc sets call specific tags on the span opened around a call.
type TagsFunc[A any] func(span opentracing.Span, arg A)

// Intercept wraps fn so that each invocation runs inside its own span named
// operation, a child of the span active in the call's context. The span is
// finished when fn returns or panics; a failing error or a panic marks it
// as errored. Errors are returned and panics re-raised unchanged.
//
// When the instrumentation is disabled at call time fn is called directly.
func Intercept[A, R any](inst *Instrumentation, operation string, fn func(context.Context, A) (R, error), tags TagsFunc[A]) func(context.Context, A) (R, error) {
	return func(ctx context.Context, arg A) (res R, err error) {
		pin := inst.Pin()
		if !pin.Enabled() {
			return fn(ctx, arg)
		}
		if ctx == nil {
			ctx = context.Background()
		}

		span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, pin.Tracer, operation)
		ext.Component.Set(span, inst.component)
		span.SetTag(ServiceNameKey, inst.serviceName(pin))
		if tags != nil {
			tags(span, arg)
		}

		defer func() {
			if v := recover(); v != nil {
				markError(span, panicError{value: v})
				span.Finish()
				panic(v)
			}
			if isFailure(err) {
				markError(span, err)
			}
			span.Finish()
		}()

		return fn(ctx, arg)
	}
}

// InterceptFunc is Intercept for calls without an argument besides the
// context.
func InterceptFunc[R any](inst *Instrumentation, operation string, fn func(context.Context) (R, error), tags func(opentracing.Span)) func(context.Context) (R, error) {
	var argTags TagsFunc[struct{}]
	if tags != nil {
		argTags = func(span opentracing.Span, _ struct{}) { tags(span) }
	}
	call := Intercept(inst, operation, func(ctx context.Context, _ struct{}) (R, error) {
		return fn(ctx)
	}, argTags)
	return func(ctx context.Context) (R, error) {
		return call(ctx, struct{}{})
	}
}
