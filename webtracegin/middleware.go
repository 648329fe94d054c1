// Package webtracegin traces gin engines.
package webtracegin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lightstep/webtrace-go"
)

// Component is the framework name used for span names and the component tag.
const Component = "gin"

// Middleware returns a gin middleware opening the request span. Register it
// first so the span covers the other handlers. The route is the path
// pattern gin matched; unmatched requests are named after their status.
func Middleware(opts ...webtrace.Option) gin.HandlerFunc {
	webtrace.EnsureGlobalPin(Component)
	inst := webtrace.New(Component, opts...)
	return func(c *gin.Context) {
		req := c.Request
		ctx, rs := inst.StartRequest(req.Context(), webtrace.RequestInfo{
			Method:  req.Method,
			URL:     requestURL(req),
			Query:   req.URL.RawQuery,
			Headers: req.Header,
		})
		if rs == nil {
			c.Next()
			return
		}
		c.Request = req.WithContext(ctx)
		if route := c.FullPath(); route != "" {
			rs.ResolveRoute("", route)
		}
		rs.Span().SetTag("gin.version", gin.Version)

		defer func() {
			if v := recover(); v != nil {
				rs.FinishPanic(v)
				panic(v)
			}
			if inst.Enabled() {
				rs.RecordStatusCode(c.Writer.Status(), c.Writer.Header())
			}
			if last := c.Errors.Last(); last != nil {
				rs.MarkError(last.Err)
			}
			rs.Finish(nil)
		}()
		c.Next()
	}
}

// RequestSpan returns the request span of c, or nil.
func RequestSpan(c *gin.Context) *webtrace.RequestSpan {
	if c.Request == nil {
		return nil
	}
	return webtrace.RequestSpanFromContext(c.Request.Context())
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}
