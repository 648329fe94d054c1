package webtrace

import (
	"strconv"
	"strings"
)

// Status is the response status of a request as far as it could be parsed.
// Code is zero when the status line did not start with a three digit code;
// Raw then holds the unparsed leading token.
type Status struct {
	Code int
	Raw  string
}

// ParseStatus parses a status line such as "200 OK". A non numeric status
// is tolerated and kept verbatim.
func ParseStatus(line string) Status {
	token, _, _ := strings.Cut(strings.TrimSpace(line), " ")
	if code, err := strconv.Atoi(token); err == nil && validCode(code) {
		return Status{Code: code, Raw: token}
	}
	return Status{Raw: token}
}

// StatusFromCode builds a Status from an integer code. Codes outside
// 100-999 are kept as raw text.
func StatusFromCode(code int) Status {
	if !validCode(code) {
		return Status{Raw: strconv.Itoa(code)}
	}
	return Status{Code: code, Raw: strconv.Itoa(code)}
}

func validCode(code int) bool {
	return code >= 100 && code <= 999
}

// Numeric reports whether the status carries an integer code.
func (s Status) Numeric() bool {
	return s.Code > 0
}

func (s Status) String() string {
	if s.Numeric() {
		return strconv.Itoa(s.Code)
	}
	return s.Raw
}
