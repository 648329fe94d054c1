package webtrace

// Proxy keeps a reference to a wrapped value on behalf of a traced wrapper.
//
// Instrumented framework objects may not accept new state, so wrappers are
// built by composition: a wrapper struct embeds the wrapped interface value,
// which forwards every method the wrapper does not override, and embeds a
// Proxy so the original can be recovered with Unwrap. Wrapping happens once
// per object; a proxy around a proxy still behaves correctly but records
// each intercepted call twice.
type Proxy[T any] struct {
	wrapped T
}

// NewProxy returns a Proxy holding v.
func NewProxy[T any](v T) Proxy[T] {
	return Proxy[T]{wrapped: v}
}

// Wrapped returns the value held by the proxy.
func (p Proxy[T]) Wrapped() T {
	return p.wrapped
}

// Unwrap returns the innermost value behind any number of proxies.
func Unwrap[T any](v T) T {
	for {
		p, ok := any(v).(interface{ Wrapped() T })
		if !ok {
			return v
		}
		v = p.Wrapped()
	}
}

// IsProxy reports whether v is a proxy of a T.
func IsProxy[T any](v T) bool {
	_, ok := any(v).(interface{ Wrapped() T })
	return ok
}
