package auth

import (
	"context"
	"net/http"
)

// Authenticator validates credentials and returns an identity.
//
// Authenticate returns (nil, error) for internal errors and a Result with
// Authenticated=false for rejected credentials. Implementations must be safe
// for concurrent use.
type Authenticator interface {
	Name() string

	// Supports reports whether the request carries credentials this
	// authenticator understands.
	Supports(req *Request) bool

	Authenticate(ctx context.Context, req *Request) (*Result, error)
}

// Request holds the parts of an HTTP request used for authentication.
type Request struct {
	Header http.Header
}

// NewRequest wraps an HTTP header set.
func NewRequest(h http.Header) *Request {
	if h == nil {
		h = http.Header{}
	}
	return &Request{Header: h}
}

// Result is the outcome of an authentication attempt.
type Result struct {
	Authenticated bool
	Identity      *Identity
	Err           error
}

func success(id *Identity) *Result { return &Result{Authenticated: true, Identity: id} }

func failure(err error) *Result { return &Result{Err: err} }
