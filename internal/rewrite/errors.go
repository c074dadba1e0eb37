package rewrite

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyEndpoint indicates a client was constructed without an
	// endpoint URL.
	ErrEmptyEndpoint = errors.New("rewrite: empty endpoint")

	// ErrEmptyCompletion indicates the endpoint answered successfully but
	// the completion carried no text.
	ErrEmptyCompletion = errors.New("rewrite: empty completion")
)

// ErrorKind classifies a failed rewrite request by its HTTP status.
type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid request"
	KindUnauthorized   ErrorKind = "unauthorized"
	KindForbidden      ErrorKind = "forbidden"
	KindNotFound       ErrorKind = "not found"
	KindServerError    ErrorKind = "server error"
	KindUnknown        ErrorKind = "unknown error"
)

// classifyStatus maps an HTTP status code onto an ErrorKind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == 400:
		return KindInvalidRequest
	case status == 401:
		return KindUnauthorized
	case status == 403:
		return KindForbidden
	case status == 404:
		return KindNotFound
	case status >= 500:
		return KindServerError
	default:
		return KindUnknown
	}
}

// RewriteError describes a failed rewrite request. Its message is shown to
// the user verbatim; failed requests are never retried.
type RewriteError struct {
	Kind   ErrorKind
	Status int
	Detail string
}

func (e *RewriteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("rewrite failed: %s (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("rewrite failed: %s (status %d): %s", e.Kind, e.Status, e.Detail)
}
