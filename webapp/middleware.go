package webapp

// Middleware wraps the handler of every routed request. The first
// middleware of an App is the outermost.
type Middleware interface {
	Wrap(next Handler) Handler
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(next Handler) Handler

func (f MiddlewareFunc) Wrap(next Handler) Handler {
	return f(next)
}

// NamedMiddleware is a Middleware that reports a name for tracing and logs.
type NamedMiddleware struct {
	MiddlewareFunc
	name string
}

// Named gives f a name.
func Named(name string, f MiddlewareFunc) *NamedMiddleware {
	return &NamedMiddleware{MiddlewareFunc: f, name: name}
}

func (m *NamedMiddleware) Name() string {
	return m.name
}
