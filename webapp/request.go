package webapp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Header is one request or response header line.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered list of header lines.
type Headers []Header

// Get returns the first value for name, compared case-insensitively.
func (h Headers) Get(name string) string {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			return hdr.Value
		}
	}
	return ""
}

// HTTP converts h to an http.Header, keeping repeated names.
func (h Headers) HTTP() http.Header {
	out := make(http.Header, len(h))
	for _, hdr := range h {
		out.Add(hdr.Name, hdr.Value)
	}
	return out
}

// HeadersFromHTTP flattens an http.Header.
func HeadersFromHTTP(h http.Header) Headers {
	out := make(Headers, 0, len(h))
	for name, values := range h {
		for _, v := range values {
			out = append(out, Header{Name: name, Value: v})
		}
	}
	return out
}

// Request is the framework's view of an inbound request.
type Request struct {
	Method  string
	Scheme  string
	Host    string
	Port    int
	Path    string
	Params  url.Values
	Headers Headers
	Body    []byte

	// RouteParams holds the values captured by the matched route pattern.
	RouteParams map[string]string
	// Deps holds the values resolved by the injector for the route.
	Deps map[string]interface{}

	ctx context.Context
}

// NewRequest builds a request for method and target, which may carry a
// query string. Scheme, host and port default to http://localhost:80.
func NewRequest(method, target string, headers ...Header) *Request {
	path, rawQuery, _ := strings.Cut(target, "?")
	params, _ := url.ParseQuery(rawQuery)
	return &Request{
		Method:  strings.ToUpper(method),
		Scheme:  "http",
		Host:    "localhost",
		Port:    80,
		Path:    path,
		Params:  params,
		Headers: headers,
	}
}

// FromHTTP converts a net/http request.
func FromHTTP(r *http.Request) *Request {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host, port := r.Host, 0
	if h, p, ok := strings.Cut(r.Host, ":"); ok {
		host = h
		port, _ = strconv.Atoi(p)
	}
	if port == 0 {
		port = 80
		if scheme == "https" {
			port = 443
		}
	}
	return &Request{
		Method:  r.Method,
		Scheme:  scheme,
		Host:    host,
		Port:    port,
		Path:    r.URL.Path,
		Params:  r.URL.Query(),
		Headers: HeadersFromHTTP(r.Header),
		ctx:     r.Context(),
	}
}

// Context returns the request's context, never nil.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r with its context changed to ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("webapp: nil context")
	}
	r2 := new(Request)
	*r2 = *r
	r2.ctx = ctx
	return r2
}

// URL returns scheme://host:port/path without the query string.
func (r *Request) URL() string {
	return fmt.Sprintf("%s://%s:%d%s", r.Scheme, r.Host, r.Port, r.Path)
}

// Dep returns a resolved dependency.
func (r *Request) Dep(param string) interface{} {
	return r.Deps[param]
}
