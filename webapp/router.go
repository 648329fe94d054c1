package webapp

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Handler serves a matched route. ctx is the request's context as seen by
// the enclosing middleware. The returned value is rendered unless it is a
// *Response.
type Handler func(ctx context.Context, req *Request) (interface{}, error)

// Route binds a handler to a method and path pattern such as /items/{id}.
// Inject lists the parameters resolved by the injector before the handler
// runs.
type Route struct {
	Name    string
	Method  string
	Pattern string
	Handler Handler
	Inject  []string
}

// DisplayName is the route's name, or its pattern when unnamed.
func (r *Route) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Pattern
}

// RouteMatch is the result of routing one request.
type RouteMatch struct {
	Route  *Route
	Params map[string]string
}

// Router matches requests to routes. Match returns nil when nothing
// matches.
type Router interface {
	Match(req *Request) *RouteMatch
	Routes() []*Route
}

// ChiRouter is a Router backed by a chi routing tree.
type ChiRouter struct {
	mu     sync.RWMutex
	mux    *chi.Mux
	routes map[string]*Route
	order  []*Route
}

// NewRouter returns a router holding routes.
func NewRouter(routes ...*Route) *ChiRouter {
	r := &ChiRouter{
		mux:    chi.NewRouter(),
		routes: make(map[string]*Route),
	}
	for _, route := range routes {
		r.Add(route)
	}
	return r
}

// Add registers route. It panics on an unknown method or a malformed
// pattern, like chi does.
func (r *ChiRouter) Add(route *Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mux.Method(route.Method, route.Pattern, http.NotFoundHandler())
	r.routes[routeKey(route.Method, route.Pattern)] = route
	r.order = append(r.order, route)
}

func (r *ChiRouter) Match(req *Request) *RouteMatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, req.Method, req.Path) {
		return nil
	}
	route, ok := r.routes[routeKey(req.Method, rctx.RoutePattern())]
	if !ok {
		return nil
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		params[key] = rctx.URLParams.Values[i]
	}
	return &RouteMatch{Route: route, Params: params}
}

func (r *ChiRouter) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Route(nil), r.order...)
}

// routeKey matches the form chi reports patterns in, without a trailing
// slash.
func routeKey(method, pattern string) string {
	if pattern != "/" {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	return method + " " + pattern
}
