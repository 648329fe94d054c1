package webapp

import (
	"context"
)

// Component provides values for handler parameters.
type Component interface {
	CanHandle(param string) bool
	Resolve(ctx context.Context, req *Request, param string) (interface{}, error)
}

// Provide returns a component resolving param with fn.
func Provide(param string, fn func(ctx context.Context, req *Request) (interface{}, error)) *Provider {
	return &Provider{Param: param, Fn: fn}
}

// Provider resolves a single parameter name.
type Provider struct {
	Param string
	Fn    func(ctx context.Context, req *Request) (interface{}, error)
}

func (p *Provider) CanHandle(param string) bool {
	return param == p.Param
}

func (p *Provider) Resolve(ctx context.Context, req *Request, _ string) (interface{}, error) {
	return p.Fn(ctx, req)
}

func (p *Provider) Name() string {
	return "provider:" + p.Param
}

// Injector resolves route dependencies from its components. The first
// component that can handle a parameter wins.
type Injector struct {
	Components []Component
}

// NewInjector returns an injector over components.
func NewInjector(components ...Component) *Injector {
	return &Injector{Components: components}
}

// Resolve returns the value for param.
func (inj *Injector) Resolve(ctx context.Context, req *Request, param string) (interface{}, error) {
	for _, c := range inj.Components {
		if c.CanHandle(param) {
			return c.Resolve(ctx, req, param)
		}
	}
	return nil, &UnresolvableError{Param: param}
}

// ResolveAll resolves every parameter in params.
func (inj *Injector) ResolveAll(ctx context.Context, req *Request, params []string) (map[string]interface{}, error) {
	if len(params) == 0 {
		return nil, nil
	}
	deps := make(map[string]interface{}, len(params))
	for _, param := range params {
		v, err := inj.Resolve(ctx, req, param)
		if err != nil {
			return nil, err
		}
		deps[param] = v
	}
	return deps, nil
}
