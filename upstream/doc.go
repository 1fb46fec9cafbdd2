// Package upstream is the client for an OpenRouter-style chat-completions
// endpoint.
//
// A Client makes exactly one HTTP attempt per Call and classifies every
// failure into one of four kinds (see Kind). Retries, if wanted, belong to
// the caller.
package upstream
