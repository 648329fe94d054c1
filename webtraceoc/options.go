package webtraceoc

import (
	opentracing "github.com/opentracing/opentracing-go"

	"github.com/lightstep/webtrace-go"
)

// Option provides configuration for the Exporter
type Option func(*config)

// WithServiceName sets the service.name tag of every exported span.
func WithServiceName(service string) Option {
	return func(c *config) {
		if service != "" {
			c.tags[webtrace.ServiceNameKey] = service
		}
	}
}

// WithTags adds tags to every exported span. Span attributes win over
// these.
func WithTags(tags opentracing.Tags) Option {
	return func(c *config) {
		for k, v := range tags {
			c.tags[k] = v
		}
	}
}

type config struct {
	tags opentracing.Tags
}

func defaultConfig() *config {
	return &config{
		tags: opentracing.Tags{"component": "opencensus"},
	}
}
