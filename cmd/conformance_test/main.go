// Command conformance_test reads carriers as JSON from stdin, extracts a span
// context from each and writes the re-injected carriers to stdout.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bytedance/sonic"
	opentracing "github.com/opentracing/opentracing-go"

	"github.com/lightstep/webtrace-go"
)

type Carriers struct {
	TextMap     map[string]string `json:"text_map"`
	HTTPHeaders map[string]string `json:"http_headers,omitempty"`
}

func main() {
	tracer := webtrace.NewTracer()

	in, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal("could not read carriers from stdin: ", err)
	}
	var carriers Carriers
	if err := sonic.Unmarshal(in, &carriers); err != nil {
		fatal("could not decode carriers: ", err)
	}

	spanContextTextMap, err := tracer.Extract(opentracing.TextMap, opentracing.TextMapCarrier(carriers.TextMap))
	if err != nil {
		fatal("could not extract text map context: ", err)
	}

	output := Carriers{
		TextMap: make(map[string]string),
	}
	err = tracer.Inject(spanContextTextMap, opentracing.TextMap, opentracing.TextMapCarrier(output.TextMap))
	if err != nil {
		fatal("could not inject text map context: ", err)
	}

	if len(carriers.HTTPHeaders) > 0 {
		headers := make(http.Header, len(carriers.HTTPHeaders))
		for k, v := range carriers.HTTPHeaders {
			headers.Set(k, v)
		}
		spanContextHeaders, err := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(headers))
		if err != nil {
			fatal("could not extract http headers context: ", err)
		}
		outHeaders := make(http.Header)
		err = tracer.Inject(spanContextHeaders, opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(outHeaders))
		if err != nil {
			fatal("could not inject http headers context: ", err)
		}
		output.HTTPHeaders = make(map[string]string, len(outHeaders))
		for k := range outHeaders {
			output.HTTPHeaders[k] = outHeaders.Get(k)
		}
	}

	out, err := sonic.Marshal(output)
	if err != nil {
		fatal("could not marshal json to stdout: ", err)
	}
	if _, err := os.Stdout.Write(append(out, '\n')); err != nil {
		fatal("could not write to stdout: ", err)
	}
	os.Exit(0)
}

func fatal(args ...interface{}) {
	fmt.Println(args...)
	os.Exit(1)
}
