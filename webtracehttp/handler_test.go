package webtracehttp_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/mocktracer"

	"github.com/lightstep/webtrace-go"
	"github.com/lightstep/webtrace-go/webtracehttp"
)

var _ = Describe("Handler", func() {
	var (
		tracer *mocktracer.MockTracer
		pin    *webtrace.Pin
	)

	BeforeEach(func() {
		tracer = mocktracer.New()
		pin = webtrace.NewPin(tracer, "shop")
	})

	serve := func(h http.Handler, method, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
		return rec
	}

	requestSpan := func() *mocktracer.MockSpan {
		spans := tracer.FinishedSpans()
		ExpectWithOffset(1, spans).To(HaveLen(1))
		ExpectWithOffset(1, spans[0].OperationName).To(Equal("http.request"))
		return spans[0]
	}

	Context("with a ServeMux", func() {
		var handler *webtracehttp.Handler

		BeforeEach(func() {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
				Expect(opentracing.SpanFromContext(r.Context())).NotTo(BeNil())
				w.Header().Set("X-Item", r.PathValue("id"))
				io.WriteString(w, "item")
			})
			mux.HandleFunc("example.com/hosted", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			mux.HandleFunc("/copy", func(w http.ResponseWriter, _ *http.Request) {
				io.Copy(w, strings.NewReader("copied"))
			})
			mux.HandleFunc("/explode", func(http.ResponseWriter, *http.Request) {
				panic("kaboom")
			})
			mux.HandleFunc("/late", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusAccepted)
				w.WriteHeader(http.StatusInternalServerError)
			})
			handler = webtracehttp.NewHandler(mux, webtrace.WithPin(pin), webtrace.WithTraceHeaders("X-Item"))
		})

		It("names the span after the matched pattern", func() {
			rec := serve(handler, "GET", "http://example.com/items/42?full=1")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("item"))

			span := requestSpan()
			Expect(span.Tag(webtrace.ResourceNameKey)).To(Equal("GET /items/{id}"))
			Expect(span.Tag(webtrace.RoutePatternKey)).To(Equal("/items/{id}"))
			Expect(span.Tag(string(ext.HTTPStatusCode))).To(Equal(uint16(200)))
			Expect(span.Tag(string(ext.HTTPUrl))).To(Equal("http://example.com/items/42"))
			Expect(span.Tag(webtrace.HTTPQueryStringKey)).To(Equal("full=1"))
			Expect(span.Tag(webtrace.HTTPResponseHeadersPrefix + "x-item")).To(Equal("42"))
			Expect(span.Tag("component")).To(Equal(webtracehttp.Component))
		})

		It("strips the host from host patterns", func() {
			rec := serve(handler, "GET", "http://example.com/hosted")
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(requestSpan().Tag(webtrace.ResourceNameKey)).To(Equal("GET /hosted"))
		})

		It("records the implicit status of ReadFrom", func() {
			rec := serve(handler, "GET", "/copy")
			Expect(rec.Body.String()).To(Equal("copied"))
			Expect(requestSpan().Tag(string(ext.HTTPStatusCode))).To(Equal(uint16(200)))
		})

		It("keeps the first status written", func() {
			serve(handler, "GET", "/late")
			Expect(requestSpan().Tag(string(ext.HTTPStatusCode))).To(Equal(uint16(202)))
		})

		It("names unmatched requests after their status", func() {
			rec := serve(handler, "GET", "/nowhere")
			Expect(rec.Code).To(Equal(http.StatusNotFound))

			span := requestSpan()
			Expect(span.Tag(webtrace.ResourceNameKey)).To(Equal("GET 404"))
			Expect(span.Tag(webtrace.RouteNameKey)).To(BeNil())
		})

		It("finishes the span on panics", func() {
			Expect(func() { serve(handler, "GET", "/explode") }).To(PanicWith("kaboom"))

			span := requestSpan()
			Expect(span.Tag(string(ext.Error))).To(Equal(true))
			Expect(span.Tag(string(ext.HTTPStatusCode))).To(Equal(uint16(500)))
			Expect(span.Tag(webtrace.ResourceNameKey)).To(Equal("GET /explode"))
		})

		It("passes requests through when disabled", func() {
			pin.Disable()
			rec := serve(handler, "GET", "/items/42")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("item"))
			Expect(tracer.FinishedSpans()).To(BeEmpty())
		})
	})

	Context("with a handler that writes nothing", func() {
		It("records the implicit 200", func() {
			handler := webtracehttp.NewHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), webtrace.WithPin(pin))
			rec := serve(handler, "GET", "/nothing")
			Expect(rec.Code).To(Equal(http.StatusOK))

			span := requestSpan()
			Expect(span.Tag(string(ext.HTTPStatusCode))).To(Equal(uint16(200)))
			Expect(span.Tag(webtrace.ResourceNameKey)).To(Equal("GET 200"))
		})
	})

	Context("with a chi router", func() {
		var handler http.Handler

		BeforeEach(func() {
			r := chi.NewRouter()
			r.Use(webtracehttp.Middleware(webtrace.WithPin(pin)))
			r.Get("/users/{name}", func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, chi.URLParam(r, "name"))
			})
			r.Route("/admin", func(r chi.Router) {
				r.Delete("/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusNoContent)
				})
			})
			handler = r
		})

		It("names the span after the chi pattern", func() {
			rec := serve(handler, "GET", "/users/ada")
			Expect(rec.Body.String()).To(Equal("ada"))
			Expect(requestSpan().Tag(webtrace.ResourceNameKey)).To(Equal("GET /users/{name}"))
		})

		It("joins subrouter patterns", func() {
			serve(handler, "DELETE", "/admin/sessions/9")
			span := requestSpan()
			Expect(span.Tag(webtrace.ResourceNameKey)).To(Equal("DELETE /admin/sessions/{id}"))
			Expect(span.Tag(string(ext.HTTPStatusCode))).To(Equal(uint16(204)))
		})
	})

	Context("wrapping a chi router", func() {
		It("reads the pattern the router resolved", func() {
			r := chi.NewRouter()
			r.Get("/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			serve(webtracehttp.NewHandler(r, webtrace.WithPin(pin)), "GET", "/orders/1")
			Expect(requestSpan().Tag(webtrace.ResourceNameKey)).To(Equal("GET /orders/{id}"))
		})
	})
})
