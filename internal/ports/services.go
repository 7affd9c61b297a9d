package ports

import (
	"context"
	"time"

	"commerce-sync-layer/internal/domain"
)

// EncryptionService encrypts secrets before storage and decrypts them after
// retrieval.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// CredentialSource provides the integration's own client credentials,
// cached for the process lifetime.
type CredentialSource interface {
	Credentials(ctx context.Context) (domain.ClientCredentials, error)
}

// MetricsRecorder records sync outcomes for observability.
type MetricsRecorder interface {
	ObserveSync(outcome string, d time.Duration)
	AddSynced(kind domain.ResourceKind, count int)
}
