package webapp

import (
	"fmt"
	"net/http"
)

// HTTPError is returned by handlers, middleware or components to stop the
// request with a specific response. App.Call converts it into that response;
// it is not a failure of the application.
type HTTPError struct {
	Status  string
	Headers Headers
	Body    interface{}
}

// NewHTTPError builds an HTTPError for code. A nil body renders the status
// line.
func NewHTTPError(code int, body interface{}, headers ...Header) *HTTPError {
	return &HTTPError{
		Status:  StatusLine(code),
		Headers: headers,
		Body:    body,
	}
}

// NotFound is the error returned when no route matches.
func NotFound() *HTTPError {
	return NewHTTPError(http.StatusNotFound, nil)
}

// Redirect stops the request with a 302 to location.
func Redirect(location string) *HTTPError {
	return NewHTTPError(http.StatusFound, nil, Header{Name: "Location", Value: location})
}

func (e *HTTPError) Error() string {
	return "webapp: " + e.Status
}

// StatusCode returns the integer status, 500 when the status line has none.
func (e *HTTPError) StatusCode() int {
	if code, ok := ParseStatusCode(e.Status); ok {
		return code
	}
	return http.StatusInternalServerError
}

// UnresolvableError is returned when no component can provide a route
// dependency.
type UnresolvableError struct {
	Param string
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("webapp: no component can resolve parameter %q", e.Param)
}
