package webtrace

import (
	"time"

	opentracing "github.com/opentracing/opentracing-go"
)

// RawSpan encapsulates all state associated with a finished span.
type RawSpan struct {
	// Those recording the RawSpan should also record the contents of its
	// SpanContext.
	Context SpanContext

	// The SpanID of this SpanContext's parent, or 0 if there is no parent.
	ParentSpanID uint64

	// The name of the "operation" this span is an instance of.
	Operation string

	// We store <start, duration> rather than <start, end> so that only
	// one of the timestamps has global clock uncertainty issues.
	Start    time.Time
	Duration time.Duration

	Tags opentracing.Tags

	// The span's "microlog".
	Logs []opentracing.LogRecord
}

// Resource returns the resource name recorded on the span, or the empty
// string when none was set.
func (r RawSpan) Resource() string {
	s, _ := r.Tags[ResourceNameKey].(string)
	return s
}

// SamplingPriority is the propagated sampling decision of a trace.
type SamplingPriority int8

const (
	SamplingPriorityUnset SamplingPriority = iota
	SamplingPriorityReject
	SamplingPriorityKeep
)

// SpanContext holds the propagated state of a span: the trace context
// extracted from inbound headers, or the context of a locally started span.
type SpanContext struct {
	// A probabilistically unique identifier for a [multi-span] trace.
	TraceID uint64

	// A probabilistically unique identifier for a span. For an extracted
	// context this is the remote parent span.
	SpanID uint64

	// Sampling decision carried by the inbound headers.
	SamplingPriority SamplingPriority

	// The span's associated baggage.
	Baggage map[string]string // initialized on first use

	// Data propagated across vendors.
	TraceState []OpaqueTraceState

	// Used to store the leading 16 bytes of a 32-byte trace ID
	// so that the full ID may be propagated across vendors,
	// i.e., if there is a 32-byte trace ID in the `traceparent` header
	LeadingTraceID uint64
}

// OpaqueTraceState contains data from other vendors, propagated via the `tracestate` header
type OpaqueTraceState struct {
	Vendor string
	Value  string
}

// Empty reports whether the context identifies no trace. Requests carrying
// no usable propagation headers produce an empty context.
func (c SpanContext) Empty() bool {
	return c.TraceID == 0 && c.LeadingTraceID == 0
}

// ForeachBaggageItem belongs to the opentracing.SpanContext interface
func (c SpanContext) ForeachBaggageItem(handler func(k, v string) bool) {
	for k, v := range c.Baggage {
		if !handler(k, v) {
			break
		}
	}
}

// WithBaggageItem returns an entirely new SpanContext with the
// given key:value baggage pair set.
func (c SpanContext) WithBaggageItem(key, val string) SpanContext {
	newBaggage := make(map[string]string, len(c.Baggage)+1)
	for k, v := range c.Baggage {
		newBaggage[k] = v
	}
	newBaggage[key] = val

	c.Baggage = newBaggage
	return c
}
