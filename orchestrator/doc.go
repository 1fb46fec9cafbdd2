// Package orchestrator answers insight queries from the cache, generating
// and caching on a miss.
//
// Resolve never fails: any error in generation yields the degraded insight,
// which is returned to the caller but never stored. Concurrent misses for
// one key share a single upstream call.
package orchestrator
