package webtrace

import (
	"strconv"
)

const (
	prefixTracerState = "ot-tracer-"
	fieldNameTraceID  = prefixTracerState + "traceid"
	fieldNameSpanID   = prefixTracerState + "spanid"
	fieldNameSampled  = prefixTracerState + "sampled"
)

// LightStepPropagator handles the ot-tracer-* header format.
var LightStepPropagator Propagator = textMapPropagator{
	traceIDKey: fieldNameTraceID,
	spanIDKey:  fieldNameSpanID,
	sampledKey: fieldNameSampled,

	formatTraceID: func(sc SpanContext) string {
		return strconv.FormatUint(sc.TraceID, 16)
	},
	parseTraceID: parseHexID,
	formatSampled: func(sc SpanContext) string {
		if sc.SamplingPriority == SamplingPriorityReject {
			return "false"
		}
		return "true"
	},
	parseSampled: func(v string) SamplingPriority {
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				return SamplingPriorityKeep
			}
			return SamplingPriorityReject
		}
		return SamplingPriorityUnset
	},
}
