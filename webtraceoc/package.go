// Package webtraceoc provides an OpenCensus exporter that records
// OpenCensus spans into a webtrace SpanRecorder, so that code instrumented
// with OpenCensus inside traced handlers lands in the same span store.
//
//     func Example() {
//         recorder := webtrace.NewInMemoryRecorder()
//         exporter := webtraceoc.NewExporter(recorder, webtraceoc.WithServiceName("api"))
//         trace.RegisterExporter(exporter)
//         defer trace.UnregisterExporter(exporter)
//     }
package webtraceoc
