// Package webapptrace traces webapp applications.
//
// Instrument replaces the router, middleware, components, renderers and
// entry point of an application with traced proxies. Every request gets one
// "webapp.request" span; route handlers, middleware, component resolution
// and rendering get child spans.
package webapptrace

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/lightstep/webtrace-go"
	"github.com/lightstep/webtrace-go/webapp"
)

// Component is the framework name used for span names and the component tag.
const Component = "webapp"

// VersionKey is the request span tag holding the framework version.
const VersionKey = "webapp.version"

// Instrument traces app and returns its instrumentation. It must be called
// once, after the application is built and before it serves requests;
// calling it again returns the existing instrumentation. The global pin is
// installed from opentracing.GlobalTracer() if none is set.
func Instrument(app *webapp.App, opts ...webtrace.Option) *webtrace.Instrumentation {
	if tr, ok := app.Router.(*tracedRouter); ok {
		return tr.inst
	}
	webtrace.EnsureGlobalPin(Component)
	inst := webtrace.New(Component, opts...)

	app.Router = &tracedRouter{
		Router: app.Router,
		Proxy:  webtrace.NewProxy(app.Router),
		inst:   inst,
		entry:  app.Entry,
	}
	for i, mw := range app.Middleware {
		app.Middleware[i] = &tracedMiddleware{
			Middleware: mw,
			Proxy:      webtrace.NewProxy(mw),
			inst:       inst,
			name:       nameOf(mw),
		}
	}
	if app.Injector != nil {
		for i, c := range app.Injector.Components {
			app.Injector.Components[i] = &tracedComponent{
				Component: c,
				Proxy:     webtrace.NewProxy(c),
				inst:      inst,
				name:      nameOf(c),
			}
		}
	}
	for i, r := range app.Renderers {
		app.Renderers[i] = &tracedRenderer{
			Renderer: r,
			Proxy:    webtrace.NewProxy(r),
			inst:     inst,
			name:     nameOf(r),
		}
	}
	app.Entry = traceEntry(inst, app.Entry)
	return inst
}

// Uninstrument restores the objects replaced by Instrument.
func Uninstrument(app *webapp.App) {
	tr, ok := app.Router.(*tracedRouter)
	if !ok {
		return
	}
	app.Router = webtrace.Unwrap(app.Router)
	app.Entry = tr.entry
	for i, mw := range app.Middleware {
		app.Middleware[i] = webtrace.Unwrap(mw)
	}
	if app.Injector != nil {
		for i, c := range app.Injector.Components {
			app.Injector.Components[i] = webtrace.Unwrap(c)
		}
	}
	for i, r := range app.Renderers {
		app.Renderers[i] = webtrace.Unwrap(r)
	}
}

// nameOf names a framework object for span resources: its Name method if
// it has one, the function name for funcs, the type name otherwise.
func nameOf(v interface{}) string {
	if n, ok := v.(interface{ Name() string }); ok {
		return n.Name()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func && !rv.IsNil() {
		if fn := runtime.FuncForPC(rv.Pointer()); fn != nil {
			return fn.Name()
		}
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}
