package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultAPIKeyHeader is the header clients send their key in.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKey describes one accepted client key. Only its hash is kept.
type APIKey struct {
	ID        string
	Hash      string
	ExpiresAt time.Time
}

// APIKeyStore looks up keys by hash.
type APIKeyStore interface {
	// Lookup returns nil when the hash is unknown.
	Lookup(ctx context.Context, hash string) (*APIKey, error)
}

// HashAPIKey returns the SHA-256 hex digest stored for key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))
	return hex.EncodeToString(sum[:])
}

// APIKeyAuthenticator accepts requests carrying a known key.
type APIKeyAuthenticator struct {
	header string
	store  APIKeyStore
	now    func() time.Time
}

// NewAPIKeyAuthenticator creates an authenticator reading header. An empty
// header uses DefaultAPIKeyHeader.
func NewAPIKeyAuthenticator(header string, store APIKeyStore) *APIKeyAuthenticator {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	return &APIKeyAuthenticator{header: header, store: store, now: time.Now}
}

func (a *APIKeyAuthenticator) Name() string { return string(MethodAPIKey) }

func (a *APIKeyAuthenticator) Supports(req *Request) bool {
	return req.Header.Get(a.header) != ""
}

func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *Request) (*Result, error) {
	key := strings.TrimSpace(req.Header.Get(a.header))
	if key == "" {
		return failure(ErrMissingCredentials), nil
	}

	info, err := a.store.Lookup(ctx, HashAPIKey(key))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return failure(ErrInvalidCredentials), nil
	}

	id := &Identity{
		Principal: info.ID,
		Method:    MethodAPIKey,
		ExpiresAt: info.ExpiresAt,
		Claims:    map[string]any{"key_id": info.ID},
	}
	if id.Expired(a.now()) {
		return failure(ErrTokenExpired), nil
	}
	return success(id), nil
}

// MemoryAPIKeyStore is an in-memory APIKeyStore.
type MemoryAPIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*APIKey
}

// NewMemoryAPIKeyStore creates a store holding the given plaintext keys.
// Each key gets an ID of the form "key-<n>" in argument order.
func NewMemoryAPIKeyStore(plain ...string) *MemoryAPIKeyStore {
	s := &MemoryAPIKeyStore{keys: make(map[string]*APIKey, len(plain))}
	n := 0
	for _, k := range plain {
		if strings.TrimSpace(k) == "" {
			continue
		}
		n++
		s.Add(&APIKey{ID: "key-" + strconv.Itoa(n), Hash: HashAPIKey(k)})
	}
	return s
}

func (s *MemoryAPIKeyStore) Lookup(_ context.Context, hash string) (*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[hash], nil
}

// Add stores or replaces info.
func (s *MemoryAPIKeyStore) Add(info *APIKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[info.Hash] = info
}

// Len returns the number of stored keys.
func (s *MemoryAPIKeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

var (
	_ Authenticator = (*APIKeyAuthenticator)(nil)
	_ APIKeyStore   = (*MemoryAPIKeyStore)(nil)
)
