package auth

import "time"

// Method indicates how a caller was authenticated.
type Method string

const (
	MethodAPIKey    Method = "api_key"
	MethodJWT       Method = "jwt"
	MethodAnonymous Method = "anonymous"
)

// Identity is an authenticated caller.
type Identity struct {
	// Principal identifies the caller: the key ID or the token subject.
	Principal string
	Method    Method
	Claims    map[string]any
	ExpiresAt time.Time
}

// Expired reports whether the identity carried an expiry that has passed.
func (id *Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

// Anonymous returns the identity attached when auth is disabled.
func Anonymous() *Identity {
	return &Identity{Principal: "anonymous", Method: MethodAnonymous}
}
