package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func header(k, v string) *Request {
	h := http.Header{}
	h.Set(k, v)
	return NewRequest(h)
}

func TestAPIKeyAuthenticator(t *testing.T) {
	store := NewMemoryAPIKeyStore("alpha", "", "beta")
	if store.Len() != 2 {
		t.Fatalf("store.Len() = %d, want 2", store.Len())
	}
	a := NewAPIKeyAuthenticator("", store)

	tests := []struct {
		name      string
		req       *Request
		wantOK    bool
		wantErr   error
		principal string
	}{
		{"first key", header("X-API-Key", "alpha"), true, nil, "key-1"},
		{"second key padded", header("X-API-Key", " beta "), true, nil, "key-2"},
		{"unknown key", header("X-API-Key", "gamma"), false, ErrInvalidCredentials, ""},
		{"no header", NewRequest(nil), false, ErrMissingCredentials, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Authenticate(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if res.Authenticated != tt.wantOK {
				t.Fatalf("Authenticated = %v, want %v", res.Authenticated, tt.wantOK)
			}
			if tt.wantErr != nil && !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", res.Err, tt.wantErr)
			}
			if tt.wantOK && res.Identity.Principal != tt.principal {
				t.Errorf("Principal = %q, want %q", res.Identity.Principal, tt.principal)
			}
		})
	}
}

func TestAPIKeyAuthenticator_Expired(t *testing.T) {
	store := NewMemoryAPIKeyStore()
	store.Add(&APIKey{ID: "old", Hash: HashAPIKey("k"), ExpiresAt: time.Now().Add(-time.Minute)})
	a := NewAPIKeyAuthenticator("X-Client-Key", store)

	if a.Supports(header("X-API-Key", "k")) {
		t.Error("Supports should only look at the configured header")
	}
	res, err := a.Authenticate(context.Background(), header("X-Client-Key", "k"))
	if err != nil || res.Authenticated || !errors.Is(res.Err, ErrTokenExpired) {
		t.Errorf("Authenticate() = (%+v, %v), want expired", res, err)
	}
}

type failingStore struct{}

func (failingStore) Lookup(context.Context, string) (*APIKey, error) {
	return nil, errors.New("store down")
}

func TestAPIKeyAuthenticator_StoreError(t *testing.T) {
	a := NewAPIKeyAuthenticator("", failingStore{})
	if _, err := a.Authenticate(context.Background(), header("X-API-Key", "k")); err == nil {
		t.Error("expected store error to propagate")
	}
}

func TestHashAPIKey(t *testing.T) {
	if HashAPIKey("abc") != HashAPIKey(" abc\n") {
		t.Error("HashAPIKey should ignore surrounding whitespace")
	}
	if len(HashAPIKey("abc")) != 64 {
		t.Errorf("HashAPIKey length = %d, want 64", len(HashAPIKey("abc")))
	}
}
