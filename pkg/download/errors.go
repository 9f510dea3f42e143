package download

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure classifications. Every transport-level
// signal (status code, net error, validation failure) is mapped to exactly
// one Kind at the boundary; retry policy dispatches on the Kind alone.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidScheme
	KindUnsupportedProtocol
	KindClientError
	KindRateLimited
	KindServerError
	KindTimeout
	KindTransientNetwork
	KindNetworkUnreachable
	KindSizeLimitExceeded
	KindEmptyDownload
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindInvalidScheme:       "invalid scheme",
	KindUnsupportedProtocol: "unsupported protocol",
	KindClientError:         "client error",
	KindRateLimited:         "rate limited",
	KindServerError:         "server error",
	KindTimeout:             "timeout",
	KindTransientNetwork:    "transient network error",
	KindNetworkUnreachable:  "network unreachable",
	KindSizeLimitExceeded:   "size limit exceeded",
	KindEmptyDownload:       "empty download",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Retryable reports whether another attempt can plausibly change the
// outcome. Rate limiting and 5xx responses resolve themselves, timeouts
// are transient; everything else means the request or the target is wrong.
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimited, KindServerError, KindTimeout, KindTransientNetwork:
		return true
	default:
		return false
	}
}

// Error is the single error type crossing the download package boundary.
type Error struct {
	Kind       Kind
	StatusCode int
	err        error
}

var _ error = &Error{}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Retryable() bool {
	return e.Kind.Retryable()
}

// NewError wraps err with a classification. err may be nil when the Kind
// and status code say everything there is to say (e.g. a bare 404).
func NewError(kind Kind, statusCode int, err error) *Error {
	return &Error{Kind: kind, StatusCode: statusCode, err: err}
}

// ErrStatus builds the Error for an unexpected HTTP status with no
// underlying cause.
func ErrStatus(kind Kind, statusCode int) *Error {
	return &Error{Kind: kind, StatusCode: statusCode}
}

// AsError extracts an *Error via errors.As, returning nil when err does not
// carry one.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}
