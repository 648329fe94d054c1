package webtrace

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	opentracing "github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// Events are emitted by the instrumentation as a reporting mechanism for
// conditions it tolerates instead of failing the request. They are handled
// by the function passed to SetGlobalEventHandler. Events may be cast to
// specific event types in order access additional information.
//
// NOTE: To ensure that events can be accurately identified, each event type contains
// a sentinel method matching the name of the type. This method is a no-op, it is only used
// for type coercion.
type Event interface {
	Event()
	String() string
}

// The ErrorEvent type can be used to filter events for errors. The `Err` method
// returns the underlying error.
type ErrorEvent interface {
	Event
	error
	Err() error
}

// EventExtractionFailed occurs when inbound propagation headers are present
// but unusable. The request is traced as a new trace.
type EventExtractionFailed interface {
	ErrorEvent
	EventExtractionFailed()
}

type eventExtractionFailed struct {
	err error
}

func newEventExtractionFailed(err error) *eventExtractionFailed {
	return &eventExtractionFailed{err: err}
}

func (*eventExtractionFailed) Event()                 {}
func (*eventExtractionFailed) EventExtractionFailed() {}

func (e *eventExtractionFailed) String() string {
	return "distributed context extraction failed: " + e.err.Error()
}

func (e *eventExtractionFailed) Error() string {
	return e.String()
}

func (e *eventExtractionFailed) Err() error {
	return e.err
}

// EventStatusUnparsed occurs when a response status line does not start
// with an integer code. The raw status is kept as the status tag.
type EventStatusUnparsed interface {
	Event
	EventStatusUnparsed()
	Status() string
}

type eventStatusUnparsed struct {
	status string
}

func newEventStatusUnparsed(status string) *eventStatusUnparsed {
	return &eventStatusUnparsed{status: status}
}

func (*eventStatusUnparsed) Event()               {}
func (*eventStatusUnparsed) EventStatusUnparsed() {}

func (e *eventStatusUnparsed) Status() string {
	return e.status
}

func (e *eventStatusUnparsed) String() string {
	return fmt.Sprintf("non numeric response status %q", e.status)
}

// EventUnsupportedTracer occurs when a tracer being passed to a helper function
// fails to typecast as a webtrace tracer.
type EventUnsupportedTracer interface {
	ErrorEvent
	EventUnsupportedTracer()
	UnsupportedTracer() opentracing.Tracer
}

type eventUnsupportedTracer struct {
	unsupportedTracer opentracing.Tracer
	err               error
}

func newEventUnsupportedTracer(tracer opentracing.Tracer) EventUnsupportedTracer {
	return &eventUnsupportedTracer{
		unsupportedTracer: tracer,
		err:               fmt.Errorf("unsupported tracer type: %v", reflect.TypeOf(tracer)),
	}
}

func (e *eventUnsupportedTracer) Event()                  {}
func (e *eventUnsupportedTracer) EventUnsupportedTracer() {}

func (e *eventUnsupportedTracer) UnsupportedTracer() opentracing.Tracer {
	return e.unsupportedTracer
}

func (e *eventUnsupportedTracer) String() string {
	return e.err.Error()
}

func (e *eventUnsupportedTracer) Error() string {
	return e.err.Error()
}

func (e *eventUnsupportedTracer) Err() error {
	return e.err
}

/*
	OnEvent Handlers
*/

var eventHandler atomic.Value

func init() {
	SetGlobalEventHandler(NewOnEventLogger(nil))
}

// SetGlobalEventHandler sets the function that receives every event.
func SetGlobalEventHandler(handler func(Event)) {
	eventHandler.Store(handler)
}

func emitEvent(event Event) {
	if handler, ok := eventHandler.Load().(func(Event)); ok && handler != nil {
		handler(event)
	}
}

// NewOnEventLogger logs events with logger. Error events are logged at warn
// level, the rest at debug level. A nil logger means zap.L() at the time of
// each event.
func NewOnEventLogger(logger *zap.Logger) func(Event) {
	return func(event Event) {
		l := logger
		if l == nil {
			l = zap.L()
		}
		switch event := event.(type) {
		case ErrorEvent:
			l.Warn("webtrace error", zap.Error(event.Err()))
		default:
			l.Debug("webtrace event", zap.Stringer("event", event))
		}
	}
}

// NewOnEventLogOneError only logs the first error event.
func NewOnEventLogOneError(logger *zap.Logger) func(Event) {
	l := &logOneError{logger: logger}
	return l.OnEvent
}

type logOneError struct {
	sync.Once
	logger *zap.Logger
}

func (l *logOneError) OnEvent(event Event) {
	switch event := event.(type) {
	case ErrorEvent:
		l.Once.Do(func() {
			logger := l.logger
			if logger == nil {
				logger = zap.L()
			}
			logger.Warn("webtrace error, further errors are not logged", zap.Error(event.Err()))
		})
	}
}

// NewOnEventChannel returns an OnEvent callback handler, and a channel that
// produces the events. When the channel buffer is full, subsequent events will
// be dropped. A buffer size of less than one is incorrect, and will be adjusted
// to a buffer size of one.
func NewOnEventChannel(buffer int) (func(Event), <-chan Event) {
	if buffer < 1 {
		buffer = 1
	}

	eventChan := make(chan Event, buffer)

	handler := func(event Event) {
		select {
		case eventChan <- event:
		default:
		}
	}

	return handler, eventChan
}
