// Package secret resolves credentials referenced from configuration.
//
// A configured value may be a literal, may contain ${VAR} references that
// must exist in the environment, or may be a secret reference:
//
//	secretref:env:OPENROUTER_API_KEY
//	secretref:file:/run/secrets/openrouter
//
// References can also appear inline ("Bearer secretref:env:TOKEN").
// Resolved values are never logged; use Mask when a hint is needed.
package secret
