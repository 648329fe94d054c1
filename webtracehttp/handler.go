// Package webtracehttp traces net/http handlers.
//
// The request span's route comes from the pattern the standard library's
// ServeMux matched, or from a chi router serving the request. The response
// status is read from the first WriteHeader, Write or ReadFrom on the
// ResponseWriter.
package webtracehttp

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"

	"github.com/lightstep/webtrace-go"
)

// Component is the framework name used for span names and the component tag.
const Component = "http"

// Handler is a traced http.Handler.
type Handler struct {
	inst *webtrace.Instrumentation
	next http.Handler
}

// NewHandler wraps next. The global pin is installed from
// opentracing.GlobalTracer() if none is set.
func NewHandler(next http.Handler, opts ...webtrace.Option) *Handler {
	webtrace.EnsureGlobalPin(Component)
	return &Handler{
		inst: webtrace.New(Component, opts...),
		next: next,
	}
}

// Middleware returns NewHandler as a middleware constructor.
func Middleware(opts ...webtrace.Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return NewHandler(next, opts...)
	}
}

// Instrumentation returns the handler's instrumentation.
func (h *Handler) Instrumentation() *webtrace.Instrumentation {
	return h.inst
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, rs := h.inst.StartRequest(r.Context(), webtrace.RequestInfo{
		Method:  r.Method,
		URL:     requestURL(r),
		Query:   r.URL.RawQuery,
		Headers: r.Header,
	})
	if rs == nil {
		h.next.ServeHTTP(w, r)
		return
	}

	rctx := chi.RouteContext(ctx)
	if rctx == nil {
		rctx = chi.NewRouteContext()
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	r = r.WithContext(ctx)

	defer func() {
		if v := recover(); v != nil {
			resolveRoute(rs, r, rctx)
			rs.FinishPanic(v)
			panic(v)
		}
		resolveRoute(rs, r, rctx)
		if _, ok := rs.Status(); !ok && h.inst.Enabled() {
			// net/http answers 200 for handlers that write nothing
			rs.RecordStatusCode(http.StatusOK, w.Header())
		}
		rs.Finish(nil)
	}()
	h.next.ServeHTTP(h.wrapWriter(w, rs), r)
}

// wrapWriter records the status of the first write on rs. The returned
// writer implements the same optional interfaces as w.
func (h *Handler) wrapWriter(w http.ResponseWriter, rs *webtrace.RequestSpan) http.ResponseWriter {
	wrote := false
	record := func(code int) {
		if wrote {
			return
		}
		wrote = true
		if h.inst.Enabled() {
			rs.RecordStatusCode(code, w.Header())
		}
	}
	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				record(code)
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				record(http.StatusOK)
				return next(b)
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				record(http.StatusOK)
				return next(src)
			}
		},
	})
}

func resolveRoute(rs *webtrace.RequestSpan, r *http.Request, rctx *chi.Context) {
	pattern := r.Pattern
	if pattern != "" {
		// ServeMux patterns are "[METHOD ][HOST]/PATH"
		if _, rest, ok := strings.Cut(pattern, " "); ok {
			pattern = rest
		}
		if i := strings.Index(pattern, "/"); i > 0 {
			pattern = pattern[i:]
		}
	} else if rctx != nil {
		pattern = rctx.RoutePattern()
	}
	if pattern != "" {
		rs.ResolveRoute("", pattern)
	}
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}
