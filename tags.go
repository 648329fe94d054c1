package webtrace

// Tag keys set by the instrumentation. Standard keys (component, span.kind,
// http.method, http.url, http.status_code, error) come from
// github.com/opentracing/opentracing-go/ext.
const (
	ResourceNameKey        = "resource.name"
	ServiceNameKey         = "service.name"
	SpanTypeKey            = "span.type"
	SpanMeasuredKey        = "span.measured"
	AnalyticsSampleRateKey = "analytics.sample_rate"

	HTTPQueryStringKey        = "http.query.string"
	HTTPRequestHeadersPrefix  = "http.request.headers."
	HTTPResponseHeadersPrefix = "http.response.headers."

	RouteNameKey    = "route.name"
	RoutePatternKey = "route.pattern"

	ErrorMessageKey = "error.message"
	ErrorTypeKey    = "error.type"
)

// Span types.
const (
	SpanTypeWeb      = "web"
	SpanTypeTemplate = "template"
)
