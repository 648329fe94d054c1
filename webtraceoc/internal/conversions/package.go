package conversions

import (
	"encoding/binary"

	"go.opencensus.io/trace"

	"github.com/lightstep/webtrace-go"
)

// ConvertTraceID splits a 128 bit trace id into its leading and trailing
// halves. ok is false for the zero id.
func ConvertTraceID(original trace.TraceID) (leading, trailing uint64, ok bool) {
	leading = binary.BigEndian.Uint64(original[:8])
	trailing = binary.BigEndian.Uint64(original[8:])
	return leading, trailing, leading != 0 || trailing != 0
}

func ConvertSpanID(original trace.SpanID) (uint64, bool) {
	spanID := binary.BigEndian.Uint64(original[:])
	return spanID, spanID != 0
}

func ConvertSpanContext(original trace.SpanContext) webtrace.SpanContext {
	sc := webtrace.SpanContext{}
	if leading, trailing, ok := ConvertTraceID(original.TraceID); ok {
		sc.LeadingTraceID = leading
		sc.TraceID = trailing
	}
	if spanID, ok := ConvertSpanID(original.SpanID); ok {
		sc.SpanID = spanID
	}
	if original.IsSampled() {
		sc.SamplingPriority = webtrace.SamplingPriorityKeep
	}
	if original.Tracestate != nil {
		for _, entry := range original.Tracestate.Entries() {
			sc.TraceState = append(sc.TraceState, webtrace.OpaqueTraceState{Vendor: entry.Key, Value: entry.Value})
		}
	}
	return sc
}

func ConvertLinkToSpanContext(link trace.Link) webtrace.SpanContext {
	spanContext := webtrace.SpanContext{
		Baggage: make(map[string]string),
	}

	if leading, trailing, ok := ConvertTraceID(link.TraceID); ok {
		spanContext.LeadingTraceID = leading
		spanContext.TraceID = trailing
	}

	if spanID, ok := ConvertSpanID(link.SpanID); ok {
		spanContext.SpanID = spanID
	}

	for k, v := range link.Attributes {
		if attribute, ok := v.(string); ok {
			spanContext.Baggage[k] = attribute
		}
	}

	return spanContext
}

// ConvertToOpenCensus is the inverse of ConvertSpanContext for ids and the
// sampling decision.
func ConvertToOpenCensus(original webtrace.SpanContext) trace.SpanContext {
	var sc trace.SpanContext
	binary.BigEndian.PutUint64(sc.TraceID[:8], original.LeadingTraceID)
	binary.BigEndian.PutUint64(sc.TraceID[8:], original.TraceID)
	binary.BigEndian.PutUint64(sc.SpanID[:], original.SpanID)
	if original.SamplingPriority != webtrace.SamplingPriorityReject {
		sc.TraceOptions = 1
	}
	return sc
}
