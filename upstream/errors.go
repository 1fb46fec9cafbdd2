package upstream

import (
	"errors"
	"fmt"
)

// Kind classifies an upstream failure.
type Kind int

const (
	// KindTransport means the request could not be completed or the reply
	// could not be read.
	KindTransport Kind = iota + 1
	// KindProviderRejected means the provider answered with a non-2xx status.
	KindProviderRejected
	// KindProviderError means a 2xx reply carried an error envelope.
	KindProviderError
	// KindEmptyContent means a 2xx reply had no message content.
	KindEmptyContent
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProviderRejected:
		return "provider_rejected"
	case KindProviderError:
		return "provider_error"
	case KindEmptyContent:
		return "empty_content"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per Kind. An *Error matches the sentinel for its kind.
var (
	ErrTransport        = errors.New("upstream: transport failure")
	ErrProviderRejected = errors.New("upstream: provider rejected request")
	ErrProviderError    = errors.New("upstream: provider error")
	ErrEmptyContent     = errors.New("upstream: empty content")
)

// ErrMissingAPIKey is returned by New when no credential is configured.
var ErrMissingAPIKey = errors.New("upstream: api key is required")

// Error is returned by Client.Call.
type Error struct {
	Kind       Kind
	StatusCode int    // set for KindProviderRejected
	Body       string // truncated response body for KindProviderRejected
	Message    string // provider message for KindProviderError
	Err        error  // underlying cause for KindTransport
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindProviderRejected:
		return fmt.Sprintf("upstream: provider returned %d: %s", e.StatusCode, e.Body)
	case KindProviderError:
		return fmt.Sprintf("upstream: provider error: %s", e.Message)
	case KindEmptyContent:
		return "upstream: no content returned"
	default:
		if e.Err != nil {
			return fmt.Sprintf("upstream: transport failure: %v", e.Err)
		}
		return "upstream: transport failure"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel error for e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrProviderRejected:
		return e.Kind == KindProviderRejected
	case ErrProviderError:
		return e.Kind == KindProviderError
	case ErrEmptyContent:
		return e.Kind == KindEmptyContent
	}
	return false
}

// Temporary reports whether repeating the call could succeed. Rejections
// with a 4xx status other than 408 and 429 are permanent.
func (e *Error) Temporary() bool {
	if e.Kind != KindProviderRejected {
		return true
	}
	if e.StatusCode == 408 || e.StatusCode == 429 {
		return true
	}
	return e.StatusCode >= 500
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return 0
}
