package webapp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Response is a rendered response ready to be emitted.
type Response struct {
	Status  string
	Headers Headers
	Body    []byte
}

// NewResponse builds a response with the standard status line for code.
func NewResponse(code int, body []byte, headers ...Header) *Response {
	return &Response{
		Status:  StatusLine(code),
		Headers: headers,
		Body:    body,
	}
}

// StatusLine returns e.g. "404 Not Found".
func StatusLine(code int) string {
	return fmt.Sprintf("%d %s", code, http.StatusText(code))
}

// ParseStatusCode returns the integer code of a status line.
func ParseStatusCode(status string) (int, bool) {
	token, _, _ := strings.Cut(strings.TrimSpace(status), " ")
	code, err := strconv.Atoi(token)
	if err != nil || code < 100 || code > 999 {
		return 0, false
	}
	return code, true
}
