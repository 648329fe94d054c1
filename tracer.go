package webtrace

import (
	"net/http"

	opentracing "github.com/opentracing/opentracing-go"
)

// Tracer is an in-process opentracing.Tracer. Finished spans are handed to
// its SpanRecorder; parents may be local spans or contexts extracted from
// inbound headers.
type Tracer struct {
	recorder   SpanRecorder
	propagator Propagator
	cfg        *tracerConfig
}

// NewTracer creates a tracer. Without options spans are discarded on finish.
func NewTracer(opts ...TracerOption) *Tracer {
	c := defaultTracerConfig()
	for _, opt := range opts {
		opt(c)
	}
	return &Tracer{
		recorder:   c.recorder,
		propagator: c.propagator,
		cfg:        c,
	}
}

// Recorder returns the recorder finished spans are delivered to.
func (t *Tracer) Recorder() SpanRecorder {
	return t.recorder
}

func (t *Tracer) StartSpan(operationName string, opts ...opentracing.StartSpanOption) opentracing.Span {
	sso := opentracing.StartSpanOptions{}
	for _, o := range opts {
		o.Apply(&sso)
	}
	return t.startSpanWithOptions(operationName, sso)
}

func (t *Tracer) startSpanWithOptions(operationName string, opts opentracing.StartSpanOptions) opentracing.Span {
	startTime := opts.StartTime
	if startTime.IsZero() {
		startTime = t.cfg.clock.Now()
	}

	tags := make(opentracing.Tags, len(t.cfg.tags)+len(opts.Tags))
	for k, v := range t.cfg.tags {
		tags[k] = v
	}
	for k, v := range opts.Tags {
		tags[k] = v
	}

	raw := RawSpan{
		Operation: operationName,
		Start:     startTime,
		Tags:      tags,
	}

	// the first reference to a webtrace context is the parent; foreign
	// contexts are ignored and the span starts a new trace
	parented := false
	for _, ref := range opts.References {
		if ref.Type != opentracing.ChildOfRef && ref.Type != opentracing.FollowsFromRef {
			continue
		}
		parent, ok := ref.ReferencedContext.(SpanContext)
		if !ok || parent.Empty() {
			continue
		}
		raw.Context = parent
		raw.Context.SpanID = genSeededGUID()
		raw.Context.Baggage = copyBaggage(parent.Baggage)
		raw.ParentSpanID = parent.SpanID
		parented = true
		break
	}
	if !parented {
		raw.Context.TraceID, raw.Context.SpanID = genSeededGUID2()
	}

	return newSpan(t, raw)
}

func (t *Tracer) Inject(sc opentracing.SpanContext, format interface{}, carrier interface{}) error {
	switch format {
	case opentracing.TextMap, opentracing.HTTPHeaders:
		return t.propagator.Inject(sc, carrier)
	}
	return opentracing.ErrUnsupportedFormat
}

func (t *Tracer) Extract(format interface{}, carrier interface{}) (opentracing.SpanContext, error) {
	switch format {
	case opentracing.TextMap, opentracing.HTTPHeaders:
		if h, ok := carrier.(http.Header); ok {
			carrier = opentracing.HTTPHeadersCarrier(h)
		}
		return t.propagator.Extract(carrier)
	}
	return nil, opentracing.ErrUnsupportedFormat
}

func copyBaggage(baggage map[string]string) map[string]string {
	if len(baggage) == 0 {
		return nil
	}
	c := make(map[string]string, len(baggage))
	for k, v := range baggage {
		c[k] = v
	}
	return c
}
