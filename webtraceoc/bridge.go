package webtraceoc

import (
	"context"

	"go.opencensus.io/trace"

	"github.com/lightstep/webtrace-go"
	"github.com/lightstep/webtrace-go/webtraceoc/internal/conversions"
)

// StartSpan starts an OpenCensus span. When ctx holds no OpenCensus span but
// a webtrace span is active, the new span continues that span's trace.
func StartSpan(ctx context.Context, name string, o ...trace.StartOption) (context.Context, *trace.Span) {
	if trace.FromContext(ctx) == nil {
		if sc, ok := webtrace.ActiveSpanContext(ctx).(webtrace.SpanContext); ok && !sc.Empty() {
			return trace.StartSpanWithRemoteParent(ctx, name, conversions.ConvertToOpenCensus(sc), o...)
		}
	}
	return trace.StartSpan(ctx, name, o...)
}
