package webtrace_test

import (
	"context"
	"errors"

	. "github.com/lightstep/webtrace-go"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
)

var _ = Describe("Intercept", func() {
	var (
		tracer *mocktracer.MockTracer
		pin    *Pin
		inst   *Instrumentation
	)

	double := func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	}

	BeforeEach(func() {
		tracer = mocktracer.New()
		pin = NewPin(tracer, "svc")
		inst = New("test", WithPin(pin))
	})

	It("runs the call inside a span", func() {
		call := Intercept(inst, "test.double", double, func(span opentracing.Span, n int) {
			span.SetTag("n", n)
		})

		res, err := call(context.Background(), 21)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(42))

		spans := tracer.FinishedSpans()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].OperationName).To(Equal("test.double"))
		Expect(spans[0].Tag("component")).To(Equal("test"))
		Expect(spans[0].Tag(ServiceNameKey)).To(Equal("svc"))
		Expect(spans[0].Tag("n")).To(Equal(21))
		Expect(spans[0].Tag("error")).To(BeNil())
	})

	It("parents the span on the span active in the context", func() {
		parent := tracer.StartSpan("parent")
		ctx := opentracing.ContextWithSpan(context.Background(), parent)

		var inner opentracing.Span
		call := Intercept(inst, "test.child", func(ctx context.Context, _ struct{}) (bool, error) {
			inner = opentracing.SpanFromContext(ctx)
			return true, nil
		}, nil)
		_, _ = call(ctx, struct{}{})
		parent.Finish()

		child := tracer.FinishedSpans()[0]
		Expect(child.ParentID).To(Equal(parent.Context().(mocktracer.MockSpanContext).SpanID))
		Expect(inner).To(BeIdenticalTo(opentracing.Span(child)))
	})

	It("returns errors unchanged and marks the span", func() {
		boom := errors.New("boom")
		call := Intercept(inst, "test.fail", func(context.Context, int) (int, error) {
			return 0, boom
		}, nil)

		_, err := call(context.Background(), 1)
		Expect(err).To(BeIdenticalTo(boom))

		span := tracer.FinishedSpans()[0]
		Expect(span.Tag("error")).To(Equal(true))
		Expect(span.Tag(ErrorMessageKey)).To(Equal("boom"))
		Expect(span.Tag(ErrorTypeKey)).To(Equal("*errors.errorString"))
	})

	It("does not mark valid responses below 500", func() {
		call := Intercept(inst, "test.redirect", func(context.Context, int) (int, error) {
			return 0, statusError(302)
		}, nil)

		_, err := call(context.Background(), 1)
		Expect(err).To(Equal(statusError(302)))
		Expect(tracer.FinishedSpans()[0].Tag("error")).To(BeNil())
	})

	It("marks valid responses of 500 and above", func() {
		call := Intercept(inst, "test.unavailable", func(context.Context, int) (int, error) {
			return 0, statusError(503)
		}, nil)

		_, _ = call(context.Background(), 1)
		Expect(tracer.FinishedSpans()[0].Tag("error")).To(Equal(true))
	})

	It("finishes the span and re-raises panics unchanged", func() {
		call := Intercept(inst, "test.panic", func(context.Context, int) (int, error) {
			panic("kaboom")
		}, nil)

		Expect(func() { _, _ = call(context.Background(), 1) }).To(PanicWith("kaboom"))

		spans := tracer.FinishedSpans()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].Tag("error")).To(Equal(true))
		Expect(spans[0].Tag(ErrorMessageKey)).To(Equal("panic: kaboom"))
		Expect(spans[0].Tag(ErrorTypeKey)).To(Equal("string"))
	})

	It("calls through without a span when the pin is disabled", func() {
		pin.Disable()
		defer pin.Enable()

		call := Intercept(inst, "test.double", double, func(opentracing.Span, int) {
			Fail("tags must not be computed")
		})
		res, err := call(context.Background(), 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(8))
		Expect(tracer.FinishedSpans()).To(BeEmpty())
	})

	It("resolves the pin at call time", func() {
		SetGlobalPin(nil)
		defer SetGlobalPin(nil)
		global := New("test")
		call := Intercept(global, "test.double", double, nil)

		_, _ = call(context.Background(), 1)
		Expect(tracer.FinishedSpans()).To(BeEmpty())

		SetGlobalPin(pin)
		_, _ = call(context.Background(), 1)
		Expect(tracer.FinishedSpans()).To(HaveLen(1))
	})

	It("supports calls without an argument", func() {
		call := InterceptFunc(inst, "test.noarg", func(context.Context) (string, error) {
			return "ok", nil
		}, func(span opentracing.Span) {
			span.SetTag("noarg", true)
		})

		res, err := call(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal("ok"))
		Expect(tracer.FinishedSpans()[0].Tag("noarg")).To(Equal(true))
	})
})
