package httpclient

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResponseNotOK is matched by every error caused by a non-2xx response.
	ErrResponseNotOK = errors.New("network response was not ok")

	// ErrUnsupportedBody is returned when data cannot be encoded with the requested Encoding.
	ErrUnsupportedBody = errors.New("unsupported request body")
)

const maxErrorBodyBytes = 512

// StatusError reports a non-2xx response. The body is truncated.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// NewStatusError builds a StatusError for a response with status and body.
func NewStatusError(method, url string, status int, body []byte) *StatusError {
	return &StatusError{
		Method:     method,
		URL:        url,
		StatusCode: status,
		Body:       bodySnippet(body),
	}
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrResponseNotOK }

func bodySnippet(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return strings.TrimSpace(string(body))
}
