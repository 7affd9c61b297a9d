package ports

import (
	"context"

	"commerce-sync-layer/internal/domain"
)

// StoreRepository defines the interface for ConnectedStore persistence.
// All operations are scoped to a tenant; reads for an unknown store return
// (nil, nil).
type StoreRepository interface {
	// PutStore creates or replaces a store record.
	PutStore(ctx context.Context, store *domain.ConnectedStore) error

	// GetStore retrieves a store by ID within a tenant.
	GetStore(ctx context.Context, tenantID string, storeID string) (*domain.ConnectedStore, error)

	// QueryStores retrieves all stores owned by a tenant.
	QueryStores(ctx context.Context, tenantID string) ([]*domain.ConnectedStore, error)

	// DeleteStore removes a store record.
	DeleteStore(ctx context.Context, tenantID string, storeID string) error

	// BeginSync flips the store's sync status to syncing if and only if no
	// sync is currently running. It reports whether the guard was acquired.
	BeginSync(ctx context.Context, tenantID string, storeID string) (bool, error)

	// ReleaseSync clears a held sync guard, marking the run failed. Only a
	// store currently in syncing status is touched. Used when the final
	// status write could not be performed, so a later sync can still start.
	ReleaseSync(ctx context.Context, tenantID string, storeID string) error
}

// ResourceRepository defines the interface for canonical resource
// persistence. Batched operations chunk internally to the backing store's
// batch-write limit; a chunk failure fails the whole call.
type ResourceRepository interface {
	// BatchPut writes resources in chunks. No partial-success result: the
	// first failing chunk fails the call.
	BatchPut(ctx context.Context, resources []domain.CanonicalResource) error

	// BatchDelete removes every resource of one kind for a store.
	BatchDelete(ctx context.Context, tenantID string, storeID string, kind domain.ResourceKind) error
}
