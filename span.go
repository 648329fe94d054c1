package webtrace

import (
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
)

// span is the opentracing.Span started by Tracer. Tag and log calls after
// Finish are ignored; Finish records the span once.
type span struct {
	tracer *Tracer

	sync.Mutex
	raw      RawSpan
	finished bool
}

func newSpan(tracer *Tracer, raw RawSpan) *span {
	return &span{tracer: tracer, raw: raw}
}

func (s *span) Finish() {
	s.FinishWithOptions(opentracing.FinishOptions{})
}

func (s *span) FinishWithOptions(opts opentracing.FinishOptions) {
	finishTime := opts.FinishTime
	if finishTime.IsZero() {
		finishTime = s.tracer.cfg.clock.Now()
	}

	s.Lock()
	if s.finished {
		s.Unlock()
		return
	}
	s.finished = true

	s.raw.Duration = finishTime.Sub(s.raw.Start)
	s.raw.Logs = append(s.raw.Logs, opts.LogRecords...)
	for _, ld := range opts.BulkLogData {
		s.raw.Logs = append(s.raw.Logs, ld.ToLogRecord())
	}
	raw := s.raw
	s.Unlock()

	s.tracer.recorder.RecordSpan(raw)
}

func (s *span) Context() opentracing.SpanContext {
	s.Lock()
	defer s.Unlock()
	return s.raw.Context
}

func (s *span) SetOperationName(operationName string) opentracing.Span {
	s.Lock()
	defer s.Unlock()
	if !s.finished {
		s.raw.Operation = operationName
	}
	return s
}

func (s *span) SetTag(key string, value interface{}) opentracing.Span {
	s.Lock()
	defer s.Unlock()
	if s.finished {
		return s
	}
	if s.raw.Tags == nil {
		s.raw.Tags = opentracing.Tags{}
	}
	s.raw.Tags[key] = value
	return s
}

func (s *span) LogFields(fields ...log.Field) {
	s.appendLog(opentracing.LogRecord{Fields: fields})
}

func (s *span) LogKV(alternatingKeyValues ...interface{}) {
	fields, err := log.InterleavedKVToFields(alternatingKeyValues...)
	if err != nil {
		s.LogFields(log.Error(err), log.String("function", "LogKV"))
		return
	}
	s.LogFields(fields...)
}

func (s *span) appendLog(lr opentracing.LogRecord) {
	s.Lock()
	defer s.Unlock()
	if s.finished {
		return
	}
	if lr.Timestamp.IsZero() {
		lr.Timestamp = s.tracer.cfg.clock.Now()
	}
	s.raw.Logs = append(s.raw.Logs, lr)
}

func (s *span) SetBaggageItem(restrictedKey, value string) opentracing.Span {
	s.Lock()
	defer s.Unlock()
	s.raw.Context = s.raw.Context.WithBaggageItem(restrictedKey, value)
	return s
}

func (s *span) BaggageItem(restrictedKey string) string {
	s.Lock()
	defer s.Unlock()
	return s.raw.Context.Baggage[restrictedKey]
}

func (s *span) Tracer() opentracing.Tracer {
	return s.tracer
}

func (s *span) LogEvent(event string) {
	s.Log(opentracing.LogData{Event: event})
}

func (s *span) LogEventWithPayload(event string, payload interface{}) {
	s.Log(opentracing.LogData{Event: event, Payload: payload})
}

func (s *span) Log(data opentracing.LogData) {
	s.appendLog(data.ToLogRecord())
}
