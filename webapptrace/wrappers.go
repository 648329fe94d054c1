package webapptrace

import (
	"context"
	"strconv"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/lightstep/webtrace-go"
	"github.com/lightstep/webtrace-go/webapp"
)

// Tag keys of the nested spans.
const (
	ParamKey      = "webapp.param"
	StatusCodeKey = "webapp.render.status_code"
)

type tracedRouter struct {
	webapp.Router
	webtrace.Proxy[webapp.Router]

	inst  *webtrace.Instrumentation
	entry webapp.EntryFunc
}

// Match resolves the request span's route and traces the matched handler.
func (r *tracedRouter) Match(req *webapp.Request) *webapp.RouteMatch {
	m := r.Router.Match(req)
	if m == nil || m.Route == nil || !r.inst.Enabled() {
		return m
	}
	webtrace.RequestSpanFromContext(req.Context()).ResolveRoute(m.Route.Name, m.Route.Pattern)

	route := *m.Route
	resource := route.DisplayName()
	route.Handler = webtrace.Intercept[*webapp.Request, interface{}](r.inst, r.inst.OperationName("handler"), m.Route.Handler,
		func(span opentracing.Span, _ *webapp.Request) {
			span.SetTag(webtrace.ResourceNameKey, resource)
			span.SetTag(webtrace.RoutePatternKey, route.Pattern)
		})
	return &webapp.RouteMatch{Route: &route, Params: m.Params}
}

type tracedMiddleware struct {
	webapp.Middleware
	webtrace.Proxy[webapp.Middleware]

	inst *webtrace.Instrumentation
	name string
}

func (m *tracedMiddleware) Wrap(next webapp.Handler) webapp.Handler {
	return webtrace.Intercept[*webapp.Request, interface{}](m.inst, m.inst.OperationName("middleware"), m.Middleware.Wrap(next), m.tags)
}

func (m *tracedMiddleware) tags(span opentracing.Span, _ *webapp.Request) {
	span.SetTag(webtrace.ResourceNameKey, m.name)
}

type tracedComponent struct {
	webapp.Component
	webtrace.Proxy[webapp.Component]

	inst *webtrace.Instrumentation
	name string
}

func (c *tracedComponent) Resolve(ctx context.Context, req *webapp.Request, param string) (interface{}, error) {
	resolve := webtrace.Intercept[string, interface{}](c.inst, c.inst.OperationName("component.resolve"),
		func(ctx context.Context, param string) (interface{}, error) {
			return c.Component.Resolve(ctx, req, param)
		}, c.tags)
	return resolve(ctx, param)
}

func (c *tracedComponent) tags(span opentracing.Span, param string) {
	span.SetTag(webtrace.ResourceNameKey, c.name)
	span.SetTag(ParamKey, param)
}

// tracedRenderer only traces renders that happen inside a traced request.
// Error pages rendered after the entry point returned are not traced.
type tracedRenderer struct {
	webapp.Renderer
	webtrace.Proxy[webapp.Renderer]

	inst *webtrace.Instrumentation
	name string
}

func (r *tracedRenderer) Render(ctx context.Context, code int, data interface{}) (*webapp.Response, error) {
	if rs := webtrace.RequestSpanFromContext(ctx); rs == nil || rs.Closed() {
		return r.Renderer.Render(ctx, code, data)
	}
	render := webtrace.Intercept[int, *webapp.Response](r.inst, r.inst.OperationName("render"),
		func(ctx context.Context, code int) (*webapp.Response, error) {
			return r.Renderer.Render(ctx, code, data)
		}, r.tags)
	return render(ctx, code)
}

func (r *tracedRenderer) tags(span opentracing.Span, code int) {
	span.SetTag(webtrace.ResourceNameKey, r.name)
	span.SetTag(webtrace.SpanTypeKey, webtrace.SpanTypeTemplate)
	span.SetTag(StatusCodeKey, strconv.Itoa(code))
}
