package webtrace

import (
	"sync/atomic"

	opentracing "github.com/opentracing/opentracing-go"
)

// Pin carries the tracer an instrumented application reports to. One Pin
// is shared process wide; interception points look it up on every call and
// treat a missing or disabled pin as "do not trace".
type Pin struct {
	Tracer  opentracing.Tracer
	Service string

	disabled atomic.Bool
}

// NewPin returns an enabled pin for tracer.
func NewPin(tracer opentracing.Tracer, service string) *Pin {
	return &Pin{Tracer: tracer, Service: service}
}

// Enabled reports whether spans should be created. A nil pin, a pin without
// a tracer and a pin holding the opentracing no-op tracer are all disabled.
func (p *Pin) Enabled() bool {
	if p == nil || p.Tracer == nil || p.disabled.Load() {
		return false
	}
	switch p.Tracer.(type) {
	case opentracing.NoopTracer, *opentracing.NoopTracer:
		return false
	}
	return true
}

// Disable turns every interception point using p into a passthrough.
func (p *Pin) Disable() {
	p.disabled.Store(true)
}

// Enable reverses Disable.
func (p *Pin) Enable() {
	p.disabled.Store(false)
}

var globalPin atomic.Pointer[Pin]

// SetGlobalPin replaces the process wide pin. Passing nil disables tracing
// for every instrumentation that resolves the global pin.
func SetGlobalPin(p *Pin) {
	globalPin.Store(p)
}

// GlobalPin returns the process wide pin, or nil when none was set.
func GlobalPin() *Pin {
	return globalPin.Load()
}

// EnsureGlobalPin installs a pin for opentracing.GlobalTracer() unless one is
// already set, and returns the pin in effect. It is called when the first
// application is instrumented.
func EnsureGlobalPin(service string) *Pin {
	if p := globalPin.Load(); p != nil {
		return p
	}
	globalPin.CompareAndSwap(nil, NewPin(opentracing.GlobalTracer(), service))
	return globalPin.Load()
}
