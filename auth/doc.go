// Package auth gates the insight endpoints behind an optional API key or
// bearer token.
//
// Authenticators turn request headers into an Identity. Middleware adapts
// any Authenticator to echo and stores the Identity on the request context.
package auth
