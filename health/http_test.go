package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("liveness = %d %q", rec.Code, rec.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"healthy", Healthy(""), http.StatusOK, "OK"},
		{"degraded", Degraded(""), http.StatusOK, "DEGRADED"},
		{"unhealthy", Unhealthy("", nil), http.StatusServiceUnavailable, "UNHEALTHY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			agg.Register("x", static("x", tt.result))
			rec := httptest.NewRecorder()
			ReadinessHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tt.wantCode || rec.Body.String() != tt.wantBody {
				t.Errorf("readiness = %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantCode, tt.wantBody)
			}
		})
	}
}

func TestSummaryHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cache", NewCacheChecker(fakeCache{n: 2}, 0))
	agg.Register("credential", NewCredentialChecker(true))

	h := SummaryHandler(agg, func(context.Context) Summary {
		return Summary{CacheSize: 2, APIKeyConfigured: true}
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["cacheSize"] != float64(2) || body["apiKeyConfigured"] != true {
		t.Errorf("body = %v", body)
	}
	checks, _ := body["checks"].(map[string]any)
	if len(checks) != 2 {
		t.Errorf("checks = %v", checks)
	}
}

func TestReport_DegradedStaysOK(t *testing.T) {
	agg := NewAggregator()
	agg.Register("upstream", static("upstream", Degraded("circuit open")))

	resp, code := Report(context.Background(), agg, nil)
	if code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("Report = (%q, %d), want (ok, 200)", resp.Status, code)
	}
	if resp.Checks["upstream"].Status != "degraded" {
		t.Errorf("upstream check = %+v", resp.Checks["upstream"])
	}
}

func TestReport_Unhealthy(t *testing.T) {
	agg := NewAggregator()
	agg.Register("credential", NewCredentialChecker(false))

	resp, code := Report(context.Background(), agg, func(context.Context) Summary { return Summary{} })
	if code != http.StatusServiceUnavailable || resp.Status != "unhealthy" {
		t.Errorf("Report = (%q, %d), want (unhealthy, 503)", resp.Status, code)
	}
	if resp.Checks["credential"].Error == "" {
		t.Error("credential check should carry its error")
	}
}
