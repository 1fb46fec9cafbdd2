package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestCompositeAuthenticator(t *testing.T) {
	c := NewCompositeAuthenticator(
		NewAPIKeyAuthenticator("", NewMemoryAPIKeyStore("alpha")),
		nil,
		NewJWTAuthenticator(JWTConfig{Secret: testSecret}),
	)
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	token := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Hour).Unix()})

	tests := []struct {
		name       string
		headers    map[string]string
		wantOK     bool
		wantMethod Method
		wantErr    error
	}{
		{"api key", map[string]string{"X-API-Key": "alpha"}, true, MethodAPIKey, nil},
		{"jwt", map[string]string{"Authorization": "Bearer " + token}, true, MethodJWT, nil},
		{"bad key falls through to jwt", map[string]string{"X-API-Key": "zzz", "Authorization": "Bearer " + token}, true, MethodJWT, nil},
		{"bad key only", map[string]string{"X-API-Key": "zzz"}, false, "", ErrInvalidCredentials},
		{"nothing", nil, false, "", ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			res, err := c.Authenticate(context.Background(), NewRequest(h))
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if res.Authenticated != tt.wantOK {
				t.Fatalf("Authenticated = %v, want %v", res.Authenticated, tt.wantOK)
			}
			if tt.wantOK && res.Identity.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", res.Identity.Method, tt.wantMethod)
			}
			if tt.wantErr != nil && !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", res.Err, tt.wantErr)
			}
		})
	}
}
