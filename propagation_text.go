package webtrace

import (
	"strconv"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
)

const (
	prefixBaggage = "ot-baggage-"
)

// Propagator injects a span context into a carrier and extracts one from it.
// Extract returns opentracing.ErrSpanContextNotFound when the carrier holds
// none of the propagator's keys and opentracing.ErrSpanContextCorrupted when
// it holds them in an unusable form.
type Propagator interface {
	Inject(opentracing.SpanContext, interface{}) error
	Extract(interface{}) (opentracing.SpanContext, error)
}

// textMapPropagator handles the "three header" formats: a trace id, a span
// id and a sampled flag under fixed keys, plus ot-baggage-* items.
type textMapPropagator struct {
	traceIDKey string
	spanIDKey  string
	sampledKey string

	formatTraceID func(SpanContext) string
	parseTraceID  func(string) (leading uint64, trailing uint64, err error)
	formatSampled func(SpanContext) string
	parseSampled  func(string) SamplingPriority
}

func parseHexID(v string) (uint64, uint64, error) {
	id, err := strconv.ParseUint(v, 16, 64)
	return 0, id, err
}

func (p textMapPropagator) Inject(
	spanContext opentracing.SpanContext,
	opaqueCarrier interface{},
) error {
	sc, ok := spanContext.(SpanContext)
	if !ok {
		return opentracing.ErrInvalidSpanContext
	}
	carrier, ok := opaqueCarrier.(opentracing.TextMapWriter)
	if !ok {
		return opentracing.ErrInvalidCarrier
	}

	carrier.Set(p.traceIDKey, p.formatTraceID(sc))
	carrier.Set(p.spanIDKey, strconv.FormatUint(sc.SpanID, 16))
	carrier.Set(p.sampledKey, p.formatSampled(sc))

	for k, v := range sc.Baggage {
		carrier.Set(prefixBaggage+k, v)
	}
	return nil
}

func (p textMapPropagator) Extract(
	opaqueCarrier interface{},
) (opentracing.SpanContext, error) {
	carrier, ok := opaqueCarrier.(opentracing.TextMapReader)
	if !ok {
		return nil, opentracing.ErrInvalidCarrier
	}

	var foundTraceID, foundSpanID bool
	var traceID, leadingTraceID, spanID uint64
	sampling := SamplingPriorityUnset
	var err error
	decodedBaggage := map[string]string{}
	err = carrier.ForeachKey(func(k, v string) error {
		lowercaseK := strings.ToLower(k)
		switch lowercaseK {
		case p.traceIDKey:
			leadingTraceID, traceID, err = p.parseTraceID(v)
			if err != nil {
				return opentracing.ErrSpanContextCorrupted
			}
			foundTraceID = true
		case p.spanIDKey:
			spanID, err = strconv.ParseUint(v, 16, 64)
			if err != nil {
				return opentracing.ErrSpanContextCorrupted
			}
			foundSpanID = true
		case p.sampledKey:
			sampling = p.parseSampled(v)
		default:
			if strings.HasPrefix(lowercaseK, prefixBaggage) {
				decodedBaggage[strings.TrimPrefix(lowercaseK, prefixBaggage)] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// a lone sampled flag or baggage does not identify a trace
	if !foundTraceID && !foundSpanID {
		return nil, opentracing.ErrSpanContextNotFound
	}
	// the sampled flag is optional, both ids are not
	if !foundTraceID || !foundSpanID || traceID == 0 && leadingTraceID == 0 {
		return nil, opentracing.ErrSpanContextCorrupted
	}

	return SpanContext{
		TraceID:          traceID,
		LeadingTraceID:   leadingTraceID,
		SpanID:           spanID,
		SamplingPriority: sampling,
		Baggage:          decodedBaggage,
	}, nil
}
