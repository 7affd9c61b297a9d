package state

import (
	"context"
	"sync"
	"time"

	"commerce-sync-layer/internal/domain"
)

// MemoryStore is an in-process OAuth state store used when no Redis address
// is configured and in tests. Expiry is lazy: records past their TTL are
// treated as absent and dropped on the next touch.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]domain.OAuthState
	now     func() time.Time
}

// NewMemoryStore creates an in-memory OAuth state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.OAuthState),
		now:     time.Now,
	}
}

// Issue creates a state record with the fixed TTL and returns its token.
func (s *MemoryStore) Issue(ctx context.Context, tenantID string, shopDomain string) (string, error) {
	token, err := newStateToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	for k, v := range s.records {
		if v.Expired(now) {
			delete(s.records, k)
		}
	}

	s.records[token] = domain.OAuthState{
		Token:     token,
		TenantID:  tenantID,
		Domain:    shopDomain,
		CreatedAt: now,
	}
	return token, nil
}

// Consume atomically reads and deletes a state record. A missing, already
// consumed or expired token returns (nil, nil).
func (s *MemoryStore) Consume(ctx context.Context, token string) (*domain.OAuthState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[token]
	if !ok {
		return nil, nil
	}
	delete(s.records, token)

	if record.Expired(s.now().UTC()) {
		return nil, nil
	}
	return &record, nil
}
