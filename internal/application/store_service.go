package application

import (
	"context"

	"commerce-sync-layer/internal/domain"
	"commerce-sync-layer/internal/ports"

	"github.com/rs/zerolog"
)

// StoreService exposes read and lifecycle operations on connected stores.
type StoreService struct {
	stores    ports.StoreRepository
	resources ports.ResourceRepository
	logger    zerolog.Logger
}

// NewStoreService creates a new store service.
func NewStoreService(stores ports.StoreRepository, resources ports.ResourceRepository, logger zerolog.Logger) *StoreService {
	return &StoreService{
		stores:    stores,
		resources: resources,
		logger:    logger,
	}
}

// List returns every store connected by the tenant.
func (s *StoreService) List(ctx context.Context, tenantID string) ([]*domain.ConnectedStore, error) {
	return s.stores.QueryStores(ctx, tenantID)
}

// Get returns a single store, or ErrStoreNotFound.
func (s *StoreService) Get(ctx context.Context, tenantID string, storeID string) (*domain.ConnectedStore, error) {
	store, err := s.stores.GetStore(ctx, tenantID, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}
	return store, nil
}

// Delete disconnects a store and removes every resource synced from it.
// Resources go first so a partial failure cannot orphan rows behind a
// deleted store record.
func (s *StoreService) Delete(ctx context.Context, tenantID string, storeID string) error {
	store, err := s.stores.GetStore(ctx, tenantID, storeID)
	if err != nil {
		return err
	}
	if store == nil {
		return domain.ErrStoreNotFound
	}

	for _, kind := range domain.SyncedKinds {
		if err := s.resources.BatchDelete(ctx, tenantID, storeID, kind); err != nil {
			return err
		}
	}

	if err := s.stores.DeleteStore(ctx, tenantID, storeID); err != nil {
		return err
	}

	s.logger.Info().
		Str("tenantId", tenantID).
		Str("storeId", storeID).
		Str("shop", store.Domain).
		Msg("Store disconnected")

	return nil
}
