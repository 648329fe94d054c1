package webtrace

import (
	"sync"
)

// A SpanRecorder handles all of the `RawSpan` data generated via an
// associated `Tracer` instance.
type SpanRecorder interface {
	RecordSpan(RawSpan)
}

type noopRecorder struct{}

func (noopRecorder) RecordSpan(RawSpan) {}

// InMemorySpanRecorder is a simple thread-safe implementation of
// SpanRecorder that stores all reported spans in memory, accessible
// via GetSpans().
type InMemorySpanRecorder struct {
	sync.RWMutex
	spans []RawSpan
}

// NewInMemoryRecorder instantiates a new InMemorySpanRecorder for testing purposes.
func NewInMemoryRecorder() *InMemorySpanRecorder {
	return new(InMemorySpanRecorder)
}

// RecordSpan implements the respective method of SpanRecorder.
func (r *InMemorySpanRecorder) RecordSpan(span RawSpan) {
	r.Lock()
	defer r.Unlock()
	r.spans = append(r.spans, span)
}

// GetSpans returns a copy of the array of spans accumulated so far.
func (r *InMemorySpanRecorder) GetSpans() []RawSpan {
	r.RLock()
	defer r.RUnlock()
	spans := make([]RawSpan, len(r.spans))
	copy(spans, r.spans)
	return spans
}

// SpansNamed returns the recorded spans with the given operation name.
func (r *InMemorySpanRecorder) SpansNamed(operation string) []RawSpan {
	r.RLock()
	defer r.RUnlock()
	var spans []RawSpan
	for _, s := range r.spans {
		if s.Operation == operation {
			spans = append(spans, s)
		}
	}
	return spans
}

// Reset clears the internal array of spans.
func (r *InMemorySpanRecorder) Reset() {
	r.Lock()
	defer r.Unlock()
	r.spans = nil
}

// MultiRecorder delivers every span to each recorder in order.
type MultiRecorder []SpanRecorder

func (m MultiRecorder) RecordSpan(span RawSpan) {
	for _, r := range m {
		r.RecordSpan(span)
	}
}
