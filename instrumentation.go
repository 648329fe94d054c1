package webtrace

import (
	"net/http"

	opentracing "github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// Instrumentation holds what one instrumented application needs to trace
// requests: where to find the tracer, its configuration and how to read
// inbound trace headers. It is built once at application construction and
// read only afterwards.
type Instrumentation struct {
	component  string
	pin        func() *Pin
	cfg        Config
	propagator Propagator
	extractor  *Extractor
	logger     *zap.Logger
}

// New returns the instrumentation for the framework named component, e.g.
// "webapp" or "gin". Spans are named "{component}.request",
// "{component}.middleware" and so on. Unless WithPin is given the global pin
// is looked up on every request.
func New(component string, opts ...Option) *Instrumentation {
	i := &Instrumentation{
		component:  component,
		pin:        GlobalPin,
		cfg:        DefaultConfig(),
		propagator: DefaultPropagator(),
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = i.logger.With(zap.String("component", component))
	i.extractor = NewExtractor(i.propagator, i.cfg.DistributedTracing, i.logger)
	return i
}

// Component returns the framework name spans are tagged with.
func (i *Instrumentation) Component() string {
	return i.component
}

// Config returns the effective configuration.
func (i *Instrumentation) Config() Config {
	return i.cfg
}

// Logger returns the instrumentation's logger.
func (i *Instrumentation) Logger() *zap.Logger {
	return i.logger
}

// Extractor returns the inbound context extractor.
func (i *Instrumentation) Extractor() *Extractor {
	return i.extractor
}

// Pin resolves the pin in effect for this call. It returns nil when the
// instrumentation is disabled by configuration.
func (i *Instrumentation) Pin() *Pin {
	if !i.cfg.Enabled {
		return nil
	}
	return i.pin()
}

// Enabled reports whether calls made now would be traced.
func (i *Instrumentation) Enabled() bool {
	return i.Pin().Enabled()
}

// OperationName returns "{component}.{suffix}".
func (i *Instrumentation) OperationName(suffix string) string {
	return i.component + "." + suffix
}

func (i *Instrumentation) serviceName(p *Pin) string {
	if i.cfg.ServiceName != "" {
		return i.cfg.ServiceName
	}
	if p != nil && p.Service != "" {
		return p.Service
	}
	return i.component
}

// remoteParent returns the inbound trace context in a form tracer accepts,
// or nil for a new trace.
func (i *Instrumentation) remoteParent(tracer opentracing.Tracer, headers http.Header) opentracing.SpanContext {
	if !i.extractor.Enabled() || len(headers) == 0 {
		return nil
	}
	carrier := opentracing.HTTPHeadersCarrier(headers)
	sc := i.extractor.Extract(carrier)
	if sc.Empty() {
		return nil
	}
	if _, native := tracer.(*Tracer); native {
		return sc
	}
	// other tracers only accept their own contexts
	foreign, err := tracer.Extract(opentracing.HTTPHeaders, carrier)
	if err != nil {
		i.logger.Debug("tracer could not extract inbound context", zap.Error(err))
		return nil
	}
	return foreign
}
