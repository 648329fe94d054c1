package webtraceoc

import (
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"
	"go.opencensus.io/trace"

	"github.com/lightstep/webtrace-go"
	"github.com/lightstep/webtrace-go/webtraceoc/internal/conversions"
)

// StatusMessageKey holds the OpenCensus status message of a failed span.
const StatusMessageKey = "opencensus.status_message"

// Exporter may be registered with OpenCensus so that span data is recorded
// into a SpanRecorder.
type Exporter struct {
	recorder webtrace.SpanRecorder
	tags     opentracing.Tags
}

// NewExporter creates a new Exporter recording into recorder.
func NewExporter(recorder webtrace.SpanRecorder, opts ...Option) *Exporter {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return &Exporter{
		recorder: recorder,
		tags:     c.tags,
	}
}

// ExportSpan converts sd and records it.
func (e *Exporter) ExportSpan(sd *trace.SpanData) {
	if sd == nil {
		return
	}
	raw := webtrace.RawSpan{
		Context:   conversions.ConvertSpanContext(sd.SpanContext),
		Operation: sd.Name,
		Start:     sd.StartTime,
		Duration:  sd.EndTime.Sub(sd.StartTime),
		Tags:      make(opentracing.Tags, len(e.tags)+len(sd.Attributes)+3),
	}
	if parentSpanID, ok := conversions.ConvertSpanID(sd.ParentSpanID); ok {
		raw.ParentSpanID = parentSpanID
	}

	for _, link := range sd.Links {
		switch link.Type {
		case trace.LinkTypeChild:
			if raw.ParentSpanID != 0 {
				continue
			}
			parent := conversions.ConvertLinkToSpanContext(link)
			raw.ParentSpanID = parent.SpanID
			raw.Context.TraceID = parent.TraceID
			raw.Context.LeadingTraceID = parent.LeadingTraceID
			for k, v := range parent.Baggage {
				raw.Context = raw.Context.WithBaggageItem(k, v)
			}
		}
	}

	for k, v := range e.tags {
		raw.Tags[k] = v
	}
	switch sd.SpanKind {
	case trace.SpanKindServer:
		raw.Tags[string(ext.SpanKind)] = ext.SpanKindRPCServerEnum
	case trace.SpanKindClient:
		raw.Tags[string(ext.SpanKind)] = ext.SpanKindRPCClientEnum
	}
	if sd.Status.Code != trace.StatusCodeOK {
		raw.Tags[string(ext.Error)] = true
		raw.Tags[StatusMessageKey] = sd.Status.Message
	}
	for k, v := range sd.Attributes {
		raw.Tags[k] = v
	}

	for _, annotation := range sd.Annotations {
		fields := []log.Field{log.String("event", annotation.Message)}
		for k, v := range annotation.Attributes {
			fields = append(fields, log.Object(k, v))
		}
		raw.Logs = append(raw.Logs, opentracing.LogRecord{
			Timestamp: annotation.Time,
			Fields:    fields,
		})
	}

	e.recorder.RecordSpan(raw)
}
