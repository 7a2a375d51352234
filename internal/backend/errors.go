package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindNetwork is a transport failure: DNS, refused connection, reset.
	KindNetwork Kind = iota
	// KindTimeout is a request that exceeded its deadline.
	KindTimeout
	// KindCanceled is a request whose context was canceled by the caller.
	KindCanceled
	// KindStatus is a non-2xx HTTP response.
	KindStatus
	// KindDecode is a 2xx response whose body could not be decoded.
	KindDecode
)

// String returns the outcome label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_error"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindStatus:
		return "bad_status"
	case KindDecode:
		return "decode_error"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by FetchError through errors.Is.
var (
	ErrNetwork          = errors.New("backend unreachable")
	ErrTimeout          = errors.New("backend request timed out")
	ErrCanceled         = errors.New("backend request canceled")
	ErrUnexpectedStatus = errors.New("backend returned an unexpected status")
	ErrDecode           = errors.New("backend response could not be decoded")
)

// FetchError describes a failed backend request.
type FetchError struct {
	// Op is the endpoint operation, e.g. "wallet-analysis".
	Op string

	// Kind classifies the failure.
	Kind Kind

	// StatusCode is set for KindStatus.
	StatusCode int

	// Detail is the (truncated) error body returned by the backend, if any.
	Detail string

	// Err is the underlying transport or decode error, if any.
	Err error
}

// Error implements error.
func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Detail != "" {
			return fmt.Sprintf("%s: %s: HTTP %d: %s", e.Op, ErrUnexpectedStatus, e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("%s: %s: HTTP %d", e.Op, ErrUnexpectedStatus, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.sentinel(), e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.sentinel())
	}
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for the failure kind.
func (e *FetchError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *FetchError) sentinel() error {
	switch e.Kind {
	case KindTimeout:
		return ErrTimeout
	case KindCanceled:
		return ErrCanceled
	case KindStatus:
		return ErrUnexpectedStatus
	case KindDecode:
		return ErrDecode
	default:
		return ErrNetwork
	}
}
