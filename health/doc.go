// Package health reports whether the service can answer insight requests.
//
// Checkers report a Status (Healthy, Degraded, Unhealthy). An Aggregator runs
// them concurrently under a timeout, and the HTTP handlers expose the result
// as liveness (/healthz), readiness (/readyz) and a JSON summary (/health)
// that includes the cache size and whether a provider credential is set.
//
//	agg := health.NewAggregator()
//	agg.Register("cache", health.NewCacheChecker(c, 0))
//	agg.Register("credential", health.NewCredentialChecker(apiKey != ""))
//	agg.Register("upstream", health.NewCircuitChecker(guard.Circuit()))
package health
