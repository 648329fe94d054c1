package webtrace

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
)

const (
	vendorKey = "webtrace"

	traceParentKey = "traceparent"
	traceStateKey  = "tracestate"

	maxTraceStateLen = 512
)

var (
	traceParentRegexp     *regexp.Regexp
	traceParentRegexpOnce sync.Once

	traceStateRegexp     *regexp.Regexp
	traceStateRegexpOnce sync.Once
)

// TraceContextPropagator handles the W3C traceparent and tracestate headers.
// Baggage travels base64 encoded in this vendor's tracestate entry.
var TraceContextPropagator Propagator = traceContextPropagator{}

type traceContextPropagator struct{}

func (traceContextPropagator) Inject(
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

	flags := "01"
	if sc.SamplingPriority == SamplingPriorityReject {
		flags = "00"
	}
	carrier.Set(traceParentKey, fmt.Sprintf("00-%016x%016x-%016x-%s", sc.LeadingTraceID, sc.TraceID, sc.SpanID, flags))

	var baggage []string
	for k, v := range sc.Baggage {
		baggage = append(baggage, fmt.Sprintf("%s=%s", k, v))
	}
	encodedBaggage := base64.RawURLEncoding.EncodeToString([]byte(strings.Join(baggage, ",")))
	traceState := fmt.Sprintf("%s=%s", vendorKey, encodedBaggage)

	traceStateLen := len(traceState)

	for _, ts := range sc.TraceState {
		encodedTS := fmt.Sprintf(",%s=%s", ts.Vendor, ts.Value)
		traceStateLen += len(encodedTS)

		if traceStateLen > maxTraceStateLen {
			break
		}

		traceState += encodedTS
	}

	carrier.Set(traceStateKey, traceState)

	return nil
}

func (traceContextPropagator) Extract(
	opaqueCarrier interface{},
) (opentracing.SpanContext, error) {
	carrier, ok := opaqueCarrier.(opentracing.TextMapReader)
	if !ok {
		return nil, opentracing.ErrInvalidCarrier
	}

	var foundParent bool
	var traceID, leadingTraceID, spanID uint64
	sampling := SamplingPriorityUnset
	var opaqueTraceState []OpaqueTraceState
	var err error
	decodedBaggage := map[string]string{}
	err = carrier.ForeachKey(func(k, v string) error {
		switch strings.ToLower(k) {
		case traceParentKey:
			traceParentRegexpOnce.Do(compileTraceParentRegexp)
			matches := traceParentRegexp.FindAllStringSubmatch(strings.TrimSpace(v), -1)
			if len(matches) != 1 || len(matches[0]) != 5 {
				return opentracing.ErrSpanContextCorrupted
			}
			leadingTraceID, err = strconv.ParseUint(matches[0][1], 16, 64)
			if err != nil {
				return opentracing.ErrSpanContextCorrupted
			}
			traceID, err = strconv.ParseUint(matches[0][2], 16, 64)
			if err != nil {
				return opentracing.ErrSpanContextCorrupted
			}
			spanID, err = strconv.ParseUint(matches[0][3], 16, 64)
			if err != nil {
				return opentracing.ErrSpanContextCorrupted
			}
			flags, err := strconv.ParseUint(matches[0][4], 16, 8)
			if err != nil {
				return opentracing.ErrSpanContextCorrupted
			}
			if flags&0x1 == 1 {
				sampling = SamplingPriorityKeep
			} else {
				sampling = SamplingPriorityReject
			}
			foundParent = true
		case traceStateKey:
			traceStateRegexpOnce.Do(compileTraceStateRegexp)
			for _, ts := range strings.Split(v, ",") {
				matches := traceStateRegexp.FindAllStringSubmatch(ts, -1)
				if len(matches) != 1 || len(matches[0]) != 3 {
					// invalid members are dropped, not fatal
					continue
				}
				tsVendor := matches[0][1]
				tsValue := matches[0][2]
				if tsVendor != vendorKey {
					opaqueTraceState = append(opaqueTraceState, OpaqueTraceState{
						Vendor: tsVendor,
						Value:  tsValue,
					})
					continue
				}
				dBaggage, err := base64.RawURLEncoding.DecodeString(tsValue)
				if err != nil {
					return opentracing.ErrSpanContextCorrupted
				}
				for _, item := range strings.Split(string(dBaggage), ",") {
					splitBaggage := strings.SplitN(item, "=", 2)
					if len(splitBaggage) == 2 {
						decodedBaggage[splitBaggage[0]] = splitBaggage[1]
					}
				}
			}
		default:
			lowercaseK := strings.ToLower(k)
			if strings.HasPrefix(lowercaseK, prefixBaggage) {
				decodedBaggage[strings.TrimPrefix(lowercaseK, prefixBaggage)] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !foundParent {
		return nil, opentracing.ErrSpanContextNotFound
	}
	if traceID == 0 && leadingTraceID == 0 || spanID == 0 {
		return nil, opentracing.ErrSpanContextCorrupted
	}

	return SpanContext{
		TraceID:          traceID,
		LeadingTraceID:   leadingTraceID,
		SpanID:           spanID,
		SamplingPriority: sampling,
		Baggage:          decodedBaggage,
		TraceState:       opaqueTraceState,
	}, nil
}

func compileTraceParentRegexp() {
	traceParentRegexp = regexp.MustCompile(`^[[:xdigit:]]{2}-([[:xdigit:]]{16})([[:xdigit:]]{16})-([[:xdigit:]]{16})-([[:xdigit:]]{2})$`)
}

func compileTraceStateRegexp() {
	traceStateRegexp = regexp.MustCompile(`^\s*([a-z0-9_\-/@]+)=([\x21-\x2b\x2d-\x3c\x3e-\x7e]*)\s*$`)
}
