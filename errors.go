package webtrace

import (
	"errors"
	"fmt"
)

// StatusCoder is implemented by errors that are themselves a valid HTTP
// response, such as redirects raised by a framework. Such errors are
// recorded as the response status and are not treated as failures unless
// the status is a server error.
type StatusCoder interface {
	StatusCode() int
}

// ResponseStatus returns the HTTP status carried by err, if any error in
// its chain implements StatusCoder.
func ResponseStatus(err error) (int, bool) {
	var sc StatusCoder
	if err != nil && errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}

// isFailure reports whether err should mark a span as errored.
func isFailure(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := ResponseStatus(err); ok {
		return code >= 500
	}
	return true
}

// panicError describes a recovered panic value for span tagging. It is
// never returned to callers: the original value is re-panicked.
type panicError struct {
	value interface{}
}

func (e panicError) Error() string {
	if err, ok := e.value.(error); ok {
		return "panic: " + err.Error()
	}
	return fmt.Sprintf("panic: %v", e.value)
}
