package webapptrace

import (
	"github.com/lightstep/webtrace-go"
	"github.com/lightstep/webtrace-go/webapp"
)

func traceEntry(inst *webtrace.Instrumentation, entry webapp.EntryFunc) webapp.EntryFunc {
	return func(req *webapp.Request, start webapp.StartResponse) (body []byte, err error) {
		ctx, rs := inst.StartRequest(req.Context(), webtrace.RequestInfo{
			Method:  req.Method,
			URL:     req.URL(),
			Query:   req.Params.Encode(),
			Headers: req.Headers.HTTP(),
		})
		if rs == nil {
			return entry(req, start)
		}
		rs.Span().SetTag(VersionKey, webapp.Version)

		defer func() {
			if v := recover(); v != nil {
				rs.FinishPanic(v)
				panic(v)
			}
			rs.Finish(err)
		}()
		return entry(req.WithContext(ctx), wrapStartResponse(inst, rs, start))
	}
}

// wrapStartResponse records the response status on rs before forwarding
// the call unchanged.
func wrapStartResponse(inst *webtrace.Instrumentation, rs *webtrace.RequestSpan, start webapp.StartResponse) webapp.StartResponse {
	return func(status string, headers webapp.Headers, exc error) {
		if inst.Enabled() && !rs.Closed() {
			rs.RecordStatus(status, headers.HTTP())
		}
		start(status, headers, exc)
	}
}
