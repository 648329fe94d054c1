package webtrace

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
)

// RequestInfo describes an inbound request.
type RequestInfo struct {
	Method  string
	URL     string
	Query   string
	Headers http.Header
}

type requestState int

const (
	requestIdle requestState = iota
	requestOpen
	requestResolving
	requestClosed
)

func (s requestState) String() string {
	switch s {
	case requestIdle:
		return "idle"
	case requestOpen:
		return "open"
	case requestResolving:
		return "resolving"
	case requestClosed:
		return "closed"
	}
	return fmt.Sprintf("requestState(%d)", int(s))
}

// RequestSpan owns the single top-level span of one request.
//
// It moves open -> resolving when the route is known and to closed on
// Finish. Until a route resolves the resource is "{METHOD} unmatched"; a
// request that never resolves ends up as "{METHOD} {status}". A RequestSpan
// belongs to one request and is used from that request's goroutine only.
// All methods accept a nil receiver, which is what StartRequest returns when
// tracing is disabled.
type RequestSpan struct {
	inst   *Instrumentation
	span   opentracing.Span
	method string

	state     requestState
	status    Status
	hasStatus bool
}

type requestSpanKey struct{}

// RequestSpanFromContext returns the request span stored by StartRequest.
func RequestSpanFromContext(ctx context.Context) *RequestSpan {
	if ctx == nil {
		return nil
	}
	rs, _ := ctx.Value(requestSpanKey{}).(*RequestSpan)
	return rs
}

// StartRequest opens the request span. The returned context carries both
// the span, as ambient parent of nested spans, and the RequestSpan. When
// tracing is disabled ctx is returned unchanged with a nil RequestSpan.
func (i *Instrumentation) StartRequest(ctx context.Context, info RequestInfo) (context.Context, *RequestSpan) {
	pin := i.Pin()
	if !pin.Enabled() {
		return ctx, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.ToUpper(info.Method)
	opts := []opentracing.StartSpanOption{
		ext.SpanKindRPCServer,
		opentracing.Tag{Key: ResourceNameKey, Value: method + " unmatched"},
	}
	if parent := i.remoteParent(pin.Tracer, info.Headers); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent))
	} else if active := opentracing.SpanFromContext(ctx); active != nil {
		opts = append(opts, opentracing.ChildOf(active.Context()))
	}

	span := pin.Tracer.StartSpan(i.OperationName("request"), opts...)
	ext.Component.Set(span, i.component)
	span.SetTag(ServiceNameKey, i.serviceName(pin))
	span.SetTag(SpanTypeKey, SpanTypeWeb)
	span.SetTag(SpanMeasuredKey, true)
	if rate, ok := i.cfg.analyticsSampleRate(); ok {
		span.SetTag(AnalyticsSampleRateKey, rate)
	}
	ext.HTTPMethod.Set(span, method)
	ext.HTTPUrl.Set(span, info.URL)
	if info.Query != "" {
		span.SetTag(HTTPQueryStringKey, info.Query)
	}

	rs := &RequestSpan{
		inst:   i,
		span:   span,
		method: method,
		state:  requestOpen,
	}
	rs.tagHeaders(HTTPRequestHeadersPrefix, info.Headers)

	ctx = opentracing.ContextWithSpan(ctx, span)
	ctx = context.WithValue(ctx, requestSpanKey{}, rs)
	return ctx, rs
}

// Span returns the underlying span, or nil.
func (r *RequestSpan) Span() opentracing.Span {
	if r == nil {
		return nil
	}
	return r.span
}

// Resolved reports whether a route was matched.
func (r *RequestSpan) Resolved() bool {
	return r != nil && r.state == requestResolving
}

// Closed reports whether the span was finished.
func (r *RequestSpan) Closed() bool {
	return r != nil && r.state == requestClosed
}

// Status returns the last recorded response status.
func (r *RequestSpan) Status() (Status, bool) {
	if r == nil {
		return Status{}, false
	}
	return r.status, r.hasStatus
}

// ResolveRoute records the matched route. An empty name falls back to the
// pattern. The resource becomes "{METHOD} {name}" and no longer follows the
// response status.
func (r *RequestSpan) ResolveRoute(name, pattern string) {
	if r == nil || r.state == requestClosed {
		return
	}
	if name == "" {
		name = pattern
	}
	if name == "" {
		return
	}
	r.span.SetTag(RouteNameKey, name)
	if pattern != "" {
		r.span.SetTag(RoutePatternKey, pattern)
	}
	r.setResource(r.method + " " + name)
	r.state = requestResolving
}

// RecordStatus records the status line and headers the application is
// about to emit. The first status recorded wins; later calls and calls on a
// closed span are no-ops. An empty status line is reported and ignored.
func (r *RequestSpan) RecordStatus(statusLine string, headers http.Header) {
	if r == nil || r.state == requestClosed || r.hasStatus {
		return
	}
	st := ParseStatus(statusLine)
	if !st.Numeric() {
		r.inst.logger.Debug("response status is not numeric", zap.String("status", statusLine))
		emitEvent(newEventStatusUnparsed(statusLine))
	}
	if st.Raw == "" {
		return
	}
	r.recordStatus(st, headers)
}

// RecordStatusCode is RecordStatus for an integer code.
func (r *RequestSpan) RecordStatusCode(code int, headers http.Header) {
	if r == nil || r.state == requestClosed || r.hasStatus {
		return
	}
	r.recordStatus(StatusFromCode(code), headers)
}

// MarkError flags the span as failed without closing it.
func (r *RequestSpan) MarkError(err error) {
	if r == nil || r.state == requestClosed || err == nil {
		return
	}
	markError(r.span, err)
}

// Finish closes the span. An error carrying a valid response status (see
// StatusCoder) records that status unless one was already emitted; any
// other error marks the span as failed and records a 500 if no status was
// emitted. Finishing twice is a no-op.
func (r *RequestSpan) Finish(err error) {
	if r == nil || r.state == requestClosed {
		return
	}
	if err != nil {
		if code, ok := ResponseStatus(err); ok {
			if !r.hasStatus {
				r.recordStatus(StatusFromCode(code), nil)
			}
			if code >= http.StatusInternalServerError {
				markError(r.span, err)
			}
		} else {
			markError(r.span, err)
			r.recordFailureStatus()
		}
	}
	r.close()
}

// FinishPanic closes the span for a request that panicked with v. The
// caller re-panics.
func (r *RequestSpan) FinishPanic(v interface{}) {
	if r == nil || r.state == requestClosed {
		return
	}
	markError(r.span, panicError{value: v})
	r.recordFailureStatus()
	r.close()
}

// recordFailureStatus records a 500 unless a status was already emitted.
func (r *RequestSpan) recordFailureStatus() {
	if !r.hasStatus {
		r.recordStatus(StatusFromCode(http.StatusInternalServerError), nil)
	}
}

func (r *RequestSpan) close() {
	r.state = requestClosed
	r.span.Finish()
}

func (r *RequestSpan) recordStatus(st Status, headers http.Header) {
	r.status = st
	r.hasStatus = true
	if st.Numeric() {
		ext.HTTPStatusCode.Set(r.span, uint16(st.Code))
	} else {
		r.span.SetTag(string(ext.HTTPStatusCode), st.Raw)
	}
	r.tagHeaders(HTTPResponseHeadersPrefix, headers)
	if r.state != requestResolving {
		r.setResource(r.method + " " + st.String())
	}
}

func (r *RequestSpan) setResource(resource string) {
	r.span.SetTag(ResourceNameKey, resource)
}

func (r *RequestSpan) tagHeaders(prefix string, headers http.Header) {
	if len(headers) == 0 {
		return
	}
	for _, name := range r.inst.cfg.TraceHeaders {
		if values := headers.Values(name); len(values) > 0 {
			r.span.SetTag(prefix+strings.ToLower(name), strings.Join(values, ","))
		}
	}
}

func markError(span opentracing.Span, err error) {
	ext.LogError(span, err)
	span.SetTag(ErrorMessageKey, err.Error())
	if pe, ok := err.(panicError); ok {
		span.SetTag(ErrorTypeKey, fmt.Sprintf("%T", pe.value))
		return
	}
	span.SetTag(ErrorTypeKey, fmt.Sprintf("%T", err))
}
