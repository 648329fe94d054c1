package webtrace_test

import (
	"net/http"
	"time"

	. "github.com/lightstep/webtrace-go"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	"github.com/zoobzio/clockz"
)

var _ = Describe("Tracer", func() {
	var (
		recorder *InMemorySpanRecorder
		clock    *clockz.FakeClock
		tracer   *Tracer
	)

	BeforeEach(func() {
		recorder = NewInMemoryRecorder()
		clock = clockz.NewFakeClock()
		tracer = NewTracer(WithRecorder(recorder), WithClock(clock))
	})

	It("complies with the OpenTracing standard", func() {
		var t opentracing.Tracer = tracer
		Expect(t).NotTo(BeNil())
	})

	Describe("#StartSpan", func() {
		It("records a span once it is finished", func() {
			span := tracer.StartSpan("operation_name")
			Expect(recorder.GetSpans()).To(BeEmpty())

			clock.Advance(150 * time.Millisecond)
			span.Finish()

			spans := recorder.GetSpans()
			Expect(spans).To(HaveLen(1))
			Expect(spans[0].Operation).To(Equal("operation_name"))
			Expect(spans[0].Duration).To(Equal(150 * time.Millisecond))
			Expect(spans[0].Context.TraceID).NotTo(BeZero())
			Expect(spans[0].Context.SpanID).NotTo(BeZero())
			Expect(spans[0].ParentSpanID).To(BeZero())
		})

		It("can be finished twice but only records once", func() {
			span := tracer.StartSpan("operation_name")
			span.Finish()
			span.Finish()

			Expect(recorder.GetSpans()).To(HaveLen(1))
		})

		It("ignores tags and logs after finish", func() {
			span := tracer.StartSpan("operation_name")
			span.SetTag("before", 1)
			span.Finish()
			span.SetTag("after", 2)
			span.LogFields(log.String("event", "late"))

			raw := recorder.GetSpans()[0]
			Expect(raw.Tags).To(HaveKey("before"))
			Expect(raw.Tags).NotTo(HaveKey("after"))
			Expect(raw.Logs).To(BeEmpty())
		})

		It("continues the trace of a local parent", func() {
			parent := tracer.StartSpan("parent")
			parent.SetBaggageItem("tenant", "t1")
			child := tracer.StartSpan("child", opentracing.ChildOf(parent.Context()))
			child.Finish()
			parent.Finish()

			pctx := parent.Context().(SpanContext)
			raw := recorder.SpansNamed("child")[0]
			Expect(raw.Context.TraceID).To(Equal(pctx.TraceID))
			Expect(raw.ParentSpanID).To(Equal(pctx.SpanID))
			Expect(raw.Context.SpanID).NotTo(Equal(pctx.SpanID))
			Expect(raw.Context.Baggage).To(HaveKeyWithValue("tenant", "t1"))
		})

		It("continues an extracted remote context", func() {
			remote := SpanContext{TraceID: 77, LeadingTraceID: 5, SpanID: 88}
			tracer.StartSpan("server", opentracing.ChildOf(remote)).Finish()

			raw := recorder.GetSpans()[0]
			Expect(raw.Context.TraceID).To(Equal(uint64(77)))
			Expect(raw.Context.LeadingTraceID).To(Equal(uint64(5)))
			Expect(raw.ParentSpanID).To(Equal(uint64(88)))
		})

		It("starts a new trace for references to external spans", func() {
			other := opentracing.NoopTracer{}.StartSpan("other")

			Expect(func() {
				tracer.StartSpan("test", opentracing.ChildOf(other.Context())).Finish()
			}).NotTo(Panic())
			Expect(recorder.GetSpans()[0].ParentSpanID).To(BeZero())
		})

		It("applies tracer wide tags", func() {
			tracer = NewTracer(WithRecorder(recorder), WithTracerTags(opentracing.Tags{"host": "h1"}))
			tracer.StartSpan("tagged", opentracing.Tag{Key: "k", Value: "v"}).Finish()

			raw := recorder.GetSpans()[0]
			Expect(raw.Tags).To(HaveKeyWithValue("host", "h1"))
			Expect(raw.Tags).To(HaveKeyWithValue("k", "v"))
		})

		It("timestamps logs with the tracer clock", func() {
			span := tracer.StartSpan("logged")
			clock.Advance(time.Second)
			span.LogKV("event", "tick")
			span.Finish()

			logs := recorder.GetSpans()[0].Logs
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].Timestamp).To(Equal(clock.Now()))
		})
	})

	Describe("#Inject and #Extract", func() {
		var validSpanContext opentracing.SpanContext

		BeforeEach(func() {
			span := tracer.StartSpan("test")
			span.SetBaggageItem("baggage", "claim")
			validSpanContext = span.Context()
		})

		Context("OpenTracing TextMap format", func() {
			It("round trips a valid SpanContext", func() {
				carrier := make(opentracing.TextMapCarrier)
				Expect(tracer.Inject(validSpanContext, opentracing.TextMap, carrier)).To(Succeed())

				sc, err := tracer.Extract(opentracing.TextMap, carrier)
				Expect(err).To(Succeed())
				Expect(sc.(SpanContext).TraceID).To(Equal(validSpanContext.(SpanContext).TraceID))
				Expect(sc.(SpanContext).SpanID).To(Equal(validSpanContext.(SpanContext).SpanID))
				Expect(sc.(SpanContext).Baggage).To(HaveKeyWithValue("baggage", "claim"))
			})

			It("fails if the carrier is not a TextMapWriter", func() {
				carrier := ""
				err := tracer.Inject(validSpanContext, opentracing.TextMap, &carrier)
				Expect(err).To(MatchError(opentracing.ErrInvalidCarrier))
			})

			It("fails if the SpanContext is foreign", func() {
				other := opentracing.NoopTracer{}.StartSpan("other")
				err := tracer.Inject(other.Context(), opentracing.TextMap, opentracing.TextMapCarrier{})
				Expect(err).To(MatchError(opentracing.ErrInvalidSpanContext))
			})
		})

		Context("OpenTracing HTTPHeaders format", func() {
			It("round trips through http.Header", func() {
				headers := http.Header{}
				err := tracer.Inject(validSpanContext, opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(headers))
				Expect(err).To(Succeed())
				Expect(headers.Get("traceparent")).NotTo(BeEmpty())

				sc, err := tracer.Extract(opentracing.HTTPHeaders, headers)
				Expect(err).To(Succeed())
				Expect(sc.(SpanContext).TraceID).To(Equal(validSpanContext.(SpanContext).TraceID))
			})
		})

		It("fails if the format is unsupported", func() {
			err := tracer.Inject(validSpanContext, opentracing.Binary, nil)
			Expect(err).To(MatchError(opentracing.ErrUnsupportedFormat))

			_, err = tracer.Extract(opentracing.Binary, nil)
			Expect(err).To(MatchError(opentracing.ErrUnsupportedFormat))
		})
	})

	Describe("GetRecorder", func() {
		It("returns the recorder of a webtrace tracer", func() {
			Expect(GetRecorder(tracer)).To(BeIdenticalTo(recorder))
		})

		It("emits an event for other tracers", func() {
			handler, events := NewOnEventChannel(1)
			SetGlobalEventHandler(handler)
			defer SetGlobalEventHandler(NewOnEventLogger(nil))

			Expect(GetRecorder(opentracing.NoopTracer{})).To(BeNil())
			var event Event
			Eventually(events).Should(Receive(&event))
			unsupported, ok := event.(EventUnsupportedTracer)
			Expect(ok).To(BeTrue())
			Expect(unsupported.UnsupportedTracer()).To(Equal(opentracing.NoopTracer{}))
			Expect(unsupported.Err()).To(MatchError(ContainSubstring("NoopTracer")))
		})
	})
})
