package http

import (
	"errors"
	nethttp "net/http"
)

type HTTPError struct {
	message string
	status  int
	headers nethttp.Header
}

func (err *HTTPError) Error() string {
	return err.message
}

func (err *HTTPError) Name() string {
	return "HTTPError"
}

func (err *HTTPError) Status() int {
	return err.status
}

func (err *HTTPError) Headers() nethttp.Header {
	return err.headers
}

func NewHTTPError(message string, status int, headers nethttp.Header) *HTTPError {
	return &HTTPError{message, status, headers}
}

// StatusOf returns the status of an [HTTPError] in the chain, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status()
	}
	return 0
}
