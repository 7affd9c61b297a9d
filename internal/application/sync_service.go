package application

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"commerce-sync-layer/internal/domain"
	"commerce-sync-layer/internal/infrastructure/shopify"
	"commerce-sync-layer/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// Sync outcomes as recorded on metrics.
const (
	outcomeCompleted = "completed"
	outcomePartial   = "partial"
	outcomeFailed    = "failed"
)

// SyncService orchestrates the fetch, map and write pipeline that keeps a
// tenant's local copy of platform data in step with the remote system. Each
// invocation is an independent unit of work; there is no background
// scheduler.
type SyncService struct {
	stores    ports.StoreRepository
	resources ports.ResourceRepository
	platform  ports.PlatformClient
	enc       ports.EncryptionService
	metrics   ports.MetricsRecorder
	logger    zerolog.Logger
	pageSize  int
}

// NewSyncService creates a new sync orchestrator.
func NewSyncService(
	stores ports.StoreRepository,
	resources ports.ResourceRepository,
	platform ports.PlatformClient,
	enc ports.EncryptionService,
	metrics ports.MetricsRecorder,
	logger zerolog.Logger,
	pageSize int,
) *SyncService {
	if pageSize <= 0 {
		pageSize = shopify.DefaultPageSize
	}
	return &SyncService{
		stores:    stores,
		resources: resources,
		platform:  platform,
		enc:       enc,
		metrics:   metrics,
		logger:    logger,
		pageSize:  pageSize,
	}
}

// Resync runs a full replace-all synchronization for an already-connected
// store. Per-kind fetch failures are soft; a store without a stored
// credential fails with ErrNotConnected, and a store already syncing fails
// with ErrSyncInProgress.
func (s *SyncService) Resync(ctx context.Context, tenantID string, storeID string) (*domain.ConnectedStore, error) {
	store, err := s.stores.GetStore(ctx, tenantID, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil || store.AccessToken == "" {
		return nil, domain.ErrNotConnected
	}

	accessToken, err := s.enc.Decrypt(store.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	acquired, err := s.stores.BeginSync(ctx, tenantID, storeID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ErrSyncInProgress
	}

	if err := s.Run(ctx, store, accessToken); err != nil {
		return nil, err
	}
	return store, nil
}

// fetchSet joins the concurrent platform reads. Per-kind errors stay with
// their kind so one failing resource type never aborts the others.
type fetchSet struct {
	profile      *goshopify.Shop
	profileErr   error
	products     []shopify.Product
	productsErr  error
	orders       []shopify.Order
	ordersErr    error
	customers    []shopify.Customer
	customersErr error
}

// Run executes the pipeline for a store whose credential is already in hand
// and records the outcome on the store record. The final status write
// releases the per-store sync guard. Mutates store in place.
func (s *SyncService) Run(ctx context.Context, store *domain.ConnectedStore, accessToken string) error {
	started := time.Now()

	var fs fetchSet
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		fs.profile, fs.profileErr = s.platform.FetchProfile(ctx, store.Domain, accessToken)
	}()
	go func() {
		defer wg.Done()
		fs.products, fs.productsErr = s.platform.FetchCatalogItems(ctx, store.Domain, accessToken, s.pageSize)
	}()
	go func() {
		defer wg.Done()
		fs.orders, fs.ordersErr = s.platform.FetchOrders(ctx, store.Domain, accessToken, s.pageSize)
	}()
	go func() {
		defer wg.Done()
		fs.customers, fs.customersErr = s.platform.FetchCustomers(ctx, store.Domain, accessToken, s.pageSize)
	}()
	wg.Wait()

	// Counts for kinds that fail below keep their previous value.
	stats := store.SyncSummary
	stats.FailedKinds = nil

	if fs.profileErr != nil {
		s.logger.Warn().Err(fs.profileErr).Str("shop", store.Domain).Msg("Profile fetch failed, keeping stored profile fields")
	} else {
		ApplyProfile(store, fs.profile)
	}

	s.syncCatalog(ctx, store, &fs, &stats)
	s.syncOrders(ctx, store, &fs, &stats)
	s.syncCustomers(ctx, store, &fs, &stats)

	outcome := outcomeCompleted
	status := domain.SyncStatusCompleted
	switch {
	case len(stats.FailedKinds) >= len(domain.SyncedKinds):
		outcome = outcomeFailed
		status = domain.SyncStatusFailed
	case len(stats.FailedKinds) > 0:
		outcome = outcomePartial
	}

	now := time.Now().UTC()
	store.LastSyncAt = &now
	store.SyncStatus = status
	store.SyncSummary = stats

	if err := s.stores.PutStore(ctx, store); err != nil {
		// The guard is normally released by this write. Drop it explicitly
		// so a transient storage failure cannot block every later sync.
		if relErr := s.stores.ReleaseSync(ctx, store.TenantID, store.ID); relErr != nil {
			s.logger.Error().Err(relErr).Str("storeId", store.ID).Msg("Could not release sync guard")
		}
		s.metrics.ObserveSync(outcomeFailed, time.Since(started))
		return err
	}

	s.metrics.ObserveSync(outcome, time.Since(started))

	s.logger.Info().
		Str("tenantId", store.TenantID).
		Str("storeId", store.ID).
		Str("outcome", outcome).
		Int("catalogItems", stats.CatalogItems).
		Int("orders", stats.Orders).
		Int("customers", stats.Customers).
		Int("inventory", stats.Inventory).
		Msg("Store sync finished")

	return nil
}

// syncCatalog replaces the catalog kind and the inventory kind derived from
// it. Inventory is never touched unless the catalog write succeeded, since
// it is computed from the same payload.
func (s *SyncService) syncCatalog(ctx context.Context, store *domain.ConnectedStore, fs *fetchSet, stats *domain.SyncStats) {
	if fs.productsErr != nil {
		s.logger.Warn().Err(fs.productsErr).Str("shop", store.Domain).Msg("Catalog fetch failed, keeping existing rows")
		stats.FailedKinds = append(stats.FailedKinds, domain.KindCatalogItem, domain.KindInventory)
		return
	}

	items := make([]domain.CatalogItem, 0, len(fs.products))
	for _, p := range fs.products {
		items = append(items, MapCatalogItem(p))
	}

	envelopes := make([]domain.CanonicalResource, 0, len(items))
	for _, item := range items {
		envelopes = append(envelopes, envelope(store, domain.KindCatalogItem, item.ID, item))
	}
	if err := s.replaceKind(ctx, store, domain.KindCatalogItem, envelopes); err != nil {
		s.logger.Error().Err(err).Str("storeId", store.ID).Msg("Catalog write failed")
		stats.FailedKinds = append(stats.FailedKinds, domain.KindCatalogItem, domain.KindInventory)
		return
	}
	stats.CatalogItems = len(items)
	s.metrics.AddSynced(domain.KindCatalogItem, len(items))

	records := DeriveInventory(items)
	envelopes = envelopes[:0]
	for _, rec := range records {
		envelopes = append(envelopes, envelope(store, domain.KindInventory, rec.VariantID, rec))
	}
	if err := s.replaceKind(ctx, store, domain.KindInventory, envelopes); err != nil {
		s.logger.Error().Err(err).Str("storeId", store.ID).Msg("Inventory write failed")
		stats.FailedKinds = append(stats.FailedKinds, domain.KindInventory)
		return
	}
	stats.Inventory = len(records)
	s.metrics.AddSynced(domain.KindInventory, len(records))
}

func (s *SyncService) syncOrders(ctx context.Context, store *domain.ConnectedStore, fs *fetchSet, stats *domain.SyncStats) {
	if fs.ordersErr != nil {
		s.logger.Warn().Err(fs.ordersErr).Str("shop", store.Domain).Msg("Orders fetch failed, keeping existing rows")
		stats.FailedKinds = append(stats.FailedKinds, domain.KindOrder)
		return
	}

	envelopes := make([]domain.CanonicalResource, 0, len(fs.orders))
	for _, o := range fs.orders {
		order := MapOrder(o)
		envelopes = append(envelopes, envelope(store, domain.KindOrder, order.ID, order))
	}
	if err := s.replaceKind(ctx, store, domain.KindOrder, envelopes); err != nil {
		s.logger.Error().Err(err).Str("storeId", store.ID).Msg("Orders write failed")
		stats.FailedKinds = append(stats.FailedKinds, domain.KindOrder)
		return
	}
	stats.Orders = len(envelopes)
	s.metrics.AddSynced(domain.KindOrder, len(envelopes))
}

func (s *SyncService) syncCustomers(ctx context.Context, store *domain.ConnectedStore, fs *fetchSet, stats *domain.SyncStats) {
	if fs.customersErr != nil {
		s.logger.Warn().Err(fs.customersErr).Str("shop", store.Domain).Msg("Customers fetch failed, keeping existing rows")
		stats.FailedKinds = append(stats.FailedKinds, domain.KindCustomer)
		return
	}

	envelopes := make([]domain.CanonicalResource, 0, len(fs.customers))
	for _, c := range fs.customers {
		customer := MapCustomer(c)
		envelopes = append(envelopes, envelope(store, domain.KindCustomer, customer.ID, customer))
	}
	if err := s.replaceKind(ctx, store, domain.KindCustomer, envelopes); err != nil {
		s.logger.Error().Err(err).Str("storeId", store.ID).Msg("Customers write failed")
		stats.FailedKinds = append(stats.FailedKinds, domain.KindCustomer)
		return
	}
	stats.Customers = len(envelopes)
	s.metrics.AddSynced(domain.KindCustomer, len(envelopes))
}

// replaceKind clears a kind and writes the fresh set. The delete only runs
// once the fetch has succeeded, so a failed fetch never empties a kind.
func (s *SyncService) replaceKind(ctx context.Context, store *domain.ConnectedStore, kind domain.ResourceKind, resources []domain.CanonicalResource) error {
	if err := s.resources.BatchDelete(ctx, store.TenantID, store.ID, kind); err != nil {
		return err
	}
	if len(resources) == 0 {
		return nil
	}
	return s.resources.BatchPut(ctx, resources)
}

func envelope(store *domain.ConnectedStore, kind domain.ResourceKind, externalID int64, payload any) domain.CanonicalResource {
	return domain.CanonicalResource{
		TenantID:   store.TenantID,
		StoreID:    store.ID,
		Kind:       kind,
		ExternalID: strconv.FormatInt(externalID, 10),
		Payload:    payload,
	}
}
