// Package webapp is a small WSGI-style web framework: an application is a
// router, a middleware chain, an injector resolving handler dependencies and
// a set of renderers, driven by a single entry point that reports the
// response status through a StartResponse callback before returning the
// body.
package webapp

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Version is the framework version reported in traces.
const Version = "0.4.0"

// StartResponse is called by the entry point exactly once per response,
// before the body is returned. exc is the handled error that produced the
// response, if any.
type StartResponse func(status string, headers Headers, exc error)

// EntryFunc is the application's entry point.
type EntryFunc func(req *Request, start StartResponse) ([]byte, error)

// App is a web application. Its fields may be replaced between
// construction and the first request.
type App struct {
	Router     Router
	Middleware []Middleware
	Injector   *Injector
	Renderers  []Renderer
	Entry      EntryFunc
	Logger     *zap.Logger
}

// Option configures an App.
type Option func(*App)

// WithMiddleware appends middleware, outermost first.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.Middleware = append(a.Middleware, mw...)
	}
}

// WithComponents appends components to the injector.
func WithComponents(components ...Component) Option {
	return func(a *App) {
		a.Injector.Components = append(a.Injector.Components, components...)
	}
}

// WithRenderers replaces the default renderers.
func WithRenderers(renderers ...Renderer) Option {
	return func(a *App) {
		a.Renderers = renderers
	}
}

// WithLogger sets the logger used by ServeHTTP.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		a.Logger = logger
	}
}

// NewApp builds an application serving routes. JSON is rendered unless the
// request only accepts text.
func NewApp(routes []*Route, opts ...Option) *App {
	a := &App{
		Router:    NewRouter(routes...),
		Injector:  NewInjector(),
		Renderers: []Renderer{JSONRenderer{}, TextRenderer{}},
		Logger:    zap.NewNop(),
	}
	a.Entry = a.Dispatch
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Call runs the entry point. An *HTTPError returned by it becomes the
// response; any other error is returned to the server.
func (a *App) Call(req *Request, start StartResponse) ([]byte, error) {
	body, err := a.Entry(req, start)
	if err == nil {
		return body, nil
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return nil, err
	}
	resp, rerr := a.renderError(req, httpErr)
	if rerr != nil {
		return nil, rerr
	}
	start(resp.Status, resp.Headers, err)
	return resp.Body, nil
}

// Dispatch is the default entry point: route, resolve dependencies, run the
// middleware chain around the handler and render its result.
func (a *App) Dispatch(req *Request, start StartResponse) ([]byte, error) {
	ctx := req.Context()
	match := a.Router.Match(req)
	if match == nil {
		return nil, NotFound()
	}

	req = req.WithContext(ctx)
	req.RouteParams = match.Params
	deps, err := a.Injector.ResolveAll(ctx, req, match.Route.Inject)
	if err != nil {
		return nil, err
	}
	req.Deps = deps

	handler := match.Route.Handler
	for i := len(a.Middleware) - 1; i >= 0; i-- {
		handler = a.Middleware[i].Wrap(handler)
	}
	data, err := handler(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := a.render(ctx, req, http.StatusOK, data)
	if err != nil {
		return nil, err
	}
	start(resp.Status, resp.Headers, nil)
	return resp.Body, nil
}

func (a *App) render(ctx context.Context, req *Request, code int, data interface{}) (*Response, error) {
	if resp, ok := data.(*Response); ok {
		return resp, nil
	}
	accept := req.Headers.Get("Accept")
	for _, r := range a.Renderers {
		if r.CanRender(accept) {
			return r.Render(ctx, code, data)
		}
	}
	if len(a.Renderers) == 0 {
		return nil, errors.New("webapp: no renderers")
	}
	return a.Renderers[0].Render(ctx, code, data)
}

func (a *App) renderError(req *Request, e *HTTPError) (*Response, error) {
	if e.Body == nil {
		resp := &Response{Status: e.Status, Body: []byte(e.Status)}
		resp.Headers = append(Headers{{Name: "Content-Type", Value: "text/plain; charset=utf-8"}}, e.Headers...)
		return resp, nil
	}
	resp, err := a.render(req.Context(), req, e.StatusCode(), e.Body)
	if err != nil {
		return nil, err
	}
	resp.Status = e.Status
	resp.Headers = append(resp.Headers, e.Headers...)
	return resp, nil
}

// ServeHTTP serves the application over net/http.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := FromHTTP(r)
	started := false
	body, err := a.Call(req, func(status string, headers Headers, _ error) {
		for _, h := range headers {
			w.Header().Add(h.Name, h.Value)
		}
		code, ok := ParseStatusCode(status)
		if !ok {
			a.Logger.Warn("invalid response status", zap.String("status", status))
			code = http.StatusInternalServerError
		}
		w.WriteHeader(code)
		started = true
	})
	if err != nil {
		a.Logger.Error("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err))
		if !started {
			http.Error(w, StatusLine(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	if _, err := w.Write(body); err != nil {
		a.Logger.Debug("write response", zap.Error(err))
	}
}
