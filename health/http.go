package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// LivenessHandler answers 200 "OK" while the process is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler runs every check and answers 503 when any is unhealthy.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := OverallStatus(agg.CheckAll(r.Context()))

		w.Header().Set("Content-Type", "text/plain")
		switch status {
		case StatusHealthy:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		case StatusDegraded:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("DEGRADED"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNHEALTHY"))
		}
	}
}

// Summary carries service facts reported alongside the checks.
type Summary struct {
	CacheSize        int
	APIKeyConfigured bool
}

// SummaryFunc produces a Summary for a request.
type SummaryFunc func(ctx context.Context) Summary

// Response is the JSON body served at /health.
type Response struct {
	// Status is "ok" unless a check is unhealthy.
	Status           string                   `json:"status"`
	CacheSize        int                      `json:"cacheSize"`
	APIKeyConfigured bool                     `json:"apiKeyConfigured"`
	Timestamp        string                   `json:"timestamp"`
	Checks           map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON form of one check.
type CheckResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Report runs every check and builds the /health body with its HTTP status.
func Report(ctx context.Context, agg *Aggregator, summary SummaryFunc) (Response, int) {
	results := agg.CheckAll(ctx)

	resp := Response{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]CheckResponse, len(results)),
	}
	if summary != nil {
		s := summary(ctx)
		resp.CacheSize = s.CacheSize
		resp.APIKeyConfigured = s.APIKeyConfigured
	}
	for name, r := range results {
		check := CheckResponse{
			Status:   r.Status.String(),
			Message:  r.Message,
			Duration: r.Duration.String(),
			Details:  r.Details,
		}
		if r.Error != nil {
			check.Error = r.Error.Error()
		}
		resp.Checks[name] = check
	}

	code := http.StatusOK
	if OverallStatus(results) == StatusUnhealthy {
		resp.Status = StatusUnhealthy.String()
		code = http.StatusServiceUnavailable
	}
	return resp, code
}

// SummaryHandler serves Report as JSON.
func SummaryHandler(agg *Aggregator, summary SummaryFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, code := Report(r.Context(), agg, summary)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
