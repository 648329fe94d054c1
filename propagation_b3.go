package webtrace

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	b3Prefix           = "x-b3-"
	b3FieldNameTraceID = b3Prefix + "traceid"
	b3FieldNameSpanID  = b3Prefix + "spanid"
	b3FieldNameSampled = b3Prefix + "sampled"
)

// B3Propagator handles the x-b3-* header format with 64 or 128 bit trace ids.
var B3Propagator Propagator = textMapPropagator{
	traceIDKey: b3FieldNameTraceID,
	spanIDKey:  b3FieldNameSpanID,
	sampledKey: b3FieldNameSampled,

	formatTraceID: func(sc SpanContext) string {
		return padTraceID(sc.LeadingTraceID, sc.TraceID)
	},
	parseTraceID: b3TraceIDParser,
	formatSampled: func(sc SpanContext) string {
		if sc.SamplingPriority == SamplingPriorityReject {
			return "0"
		}
		return "1"
	},
	parseSampled: b3SampledParser,
}

func b3TraceIDParser(v string) (uint64, uint64, error) {
	// handle 128-bit IDs
	if len(v) == 32 {
		leading, err := strconv.ParseUint(v[:16], 16, 64)
		if err != nil {
			return 0, 0, err
		}
		trailing, err := strconv.ParseUint(v[16:], 16, 64)
		return leading, trailing, err
	}
	val, err := strconv.ParseUint(v, 16, 64)
	return 0, val, err
}

func b3SampledParser(v string) SamplingPriority {
	switch strings.ToLower(v) {
	case "1", "true", "d":
		return SamplingPriorityKeep
	case "0", "false":
		return SamplingPriorityReject
	}
	return SamplingPriorityUnset
}

func padTraceID(leading, trailing uint64) string {
	if leading == 0 {
		return strconv.FormatUint(trailing, 16)
	}
	// pad TraceID to 128 bit
	return fmt.Sprintf("%016x%016x", leading, trailing)
}
