package ports

import (
	"context"

	"commerce-sync-layer/internal/domain"
)

// OAuthStateStore issues and consumes the single-use, time-bounded state
// tokens that correlate an authorization redirect with its tenant.
type OAuthStateStore interface {
	// Issue creates a state record with the fixed TTL and returns its token.
	Issue(ctx context.Context, tenantID string, shopDomain string) (string, error)

	// Consume atomically reads and deletes a state record. Unknown, already
	// consumed and expired tokens all return (nil, nil).
	Consume(ctx context.Context, token string) (*domain.OAuthState, error)
}
