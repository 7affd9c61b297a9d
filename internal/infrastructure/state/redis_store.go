package state

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"commerce-sync-layer/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "oauthState:"

// RedisStore keeps OAuth state tokens in Redis. Records carry the fixed TTL
// so expired tokens vanish on their own; GETDEL makes consumption atomic, so
// a token can be consumed at most once even under concurrent callbacks.
type RedisStore struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed OAuth state store.
func NewRedisStore(rdb *redis.Client, logger zerolog.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, logger: logger}
}

// Issue creates a state record with the fixed TTL and returns its token.
func (s *RedisStore) Issue(ctx context.Context, tenantID string, shopDomain string) (string, error) {
	token, err := newStateToken()
	if err != nil {
		return "", err
	}

	record := domain.OAuthState{
		Token:     token,
		TenantID:  tenantID,
		Domain:    shopDomain,
		CreatedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}

	if err := s.rdb.Set(ctx, keyPrefix+token, payload, domain.StateTTL).Err(); err != nil {
		return "", &domain.StorageError{Op: "issue oauth state", Err: err}
	}

	return token, nil
}

// Consume atomically reads and deletes a state record. A missing, already
// consumed or expired token returns (nil, nil).
func (s *RedisStore) Consume(ctx context.Context, token string) (*domain.OAuthState, error) {
	payload, err := s.rdb.GetDel(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "consume oauth state", Err: err}
	}

	var record domain.OAuthState
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}

	// Redis already expires the key, but the contract is on createdAt+ttl.
	if record.Expired(time.Now().UTC()) {
		return nil, nil
	}

	return &record, nil
}

func newStateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
