package webtrace

import (
	opentracing "github.com/opentracing/opentracing-go"
)

// PropagatorStack injects with every propagator it holds and extracts with
// the first one that finds a span context.
type PropagatorStack struct {
	propagators []Propagator
}

// DefaultPropagator is used by tracers and extractors configured without
// an explicit propagator.
func DefaultPropagator() *PropagatorStack {
	stack := &PropagatorStack{}
	stack.PushPropagator(TraceContextPropagator)
	stack.PushPropagator(B3Propagator)
	stack.PushPropagator(LightStepPropagator)
	return stack
}

// PushPropagator appends p; earlier propagators win on Extract.
func (stack *PropagatorStack) PushPropagator(p Propagator) {
	stack.propagators = append(stack.propagators, p)
}

// Len reports the number of propagators in the stack.
func (stack *PropagatorStack) Len() int {
	return len(stack.propagators)
}

func (stack *PropagatorStack) Inject(
	spanContext opentracing.SpanContext,
	opaqueCarrier interface{},
) error {
	if len(stack.propagators) == 0 {
		return opentracing.ErrUnsupportedFormat
	}
	for _, propagator := range stack.propagators {
		if err := propagator.Inject(spanContext, opaqueCarrier); err != nil {
			return err
		}
	}
	return nil
}

func (stack *PropagatorStack) Extract(
	opaqueCarrier interface{},
) (opentracing.SpanContext, error) {
	if len(stack.propagators) == 0 {
		return nil, opentracing.ErrUnsupportedFormat
	}

	err := opentracing.ErrSpanContextNotFound
	for _, propagator := range stack.propagators {
		sc, perr := propagator.Extract(opaqueCarrier)
		if perr == nil {
			return sc, nil
		}
		// keep the most telling failure: a corrupted header beats a missing one
		if perr != opentracing.ErrSpanContextNotFound {
			err = perr
		}
	}
	return nil, err
}
