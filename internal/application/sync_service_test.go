package application

import (
	"context"
	"testing"

	"commerce-sync-layer/internal/domain"
	"commerce-sync-layer/internal/infrastructure/shopify"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testProducts() []shopify.Product {
	return []shopify.Product{
		{
			ID:    101,
			Title: "Coffee Mug",
			Tags:  "kitchen, ceramic",
			Variants: []shopify.Variant{
				{ID: 1001, ProductID: 101, SKU: "MUG-1", Price: decPtr("12.50"), InventoryQuantity: intPtr(5)},
				{ID: 1002, ProductID: 101, SKU: "MUG-2", Price: decPtr("14.00"), InventoryQuantity: nil},
			},
		},
		{ID: 102, Title: "Gift Card"},
	}
}

func newSyncFixture(t *testing.T) (*SyncService, *fakeStoreRepo, *fakeResourceRepo, *fakePlatform, *fakeMetrics) {
	t.Helper()
	stores := newFakeStoreRepo()
	resources := newFakeResourceRepo()
	platform := &fakePlatform{
		profile:   &goshopify.Shop{Name: "Acme", Currency: "EUR", Country: "DE"},
		products:  testProducts(),
		orders:    []shopify.Order{{ID: 501, Name: "#1001", TotalPrice: decPtr("12.50"), Currency: "EUR"}},
		customers: nil,
	}
	metrics := newFakeMetrics()
	svc := NewSyncService(stores, resources, platform, fakeEncryptor{}, metrics, zerolog.Nop(), 50)
	return svc, stores, resources, platform, metrics
}

func seedStore(t *testing.T, stores *fakeStoreRepo) *domain.ConnectedStore {
	t.Helper()
	store := &domain.ConnectedStore{
		ID:          "store-1",
		TenantID:    "tenant-1",
		Domain:      "acme.myshopify.com",
		Name:        "acme.myshopify.com",
		Status:      domain.StoreStatusActive,
		AccessToken: "enc:token-abc",
		SyncStatus:  domain.SyncStatusPending,
	}
	require.NoError(t, stores.PutStore(context.Background(), store))
	return store
}

func TestResyncHappyPath(t *testing.T) {
	svc, stores, resources, _, metrics := newSyncFixture(t)
	seedStore(t, stores)

	store, err := svc.Resync(context.Background(), "tenant-1", "store-1")
	require.NoError(t, err)

	assert.Equal(t, 2, store.SyncSummary.CatalogItems)
	assert.Equal(t, 1, store.SyncSummary.Orders)
	assert.Equal(t, 0, store.SyncSummary.Customers)
	assert.Equal(t, 1, store.SyncSummary.Inventory)
	assert.Empty(t, store.SyncSummary.FailedKinds)
	assert.Equal(t, domain.SyncStatusCompleted, store.SyncStatus)
	require.NotNil(t, store.LastSyncAt)

	// Profile fields applied from the shop profile.
	assert.Equal(t, "Acme", store.Name)
	assert.Equal(t, "EUR", store.Currency)

	assert.Equal(t, 2, resources.count("tenant-1", "store-1", domain.KindCatalogItem))
	assert.Equal(t, 1, resources.count("tenant-1", "store-1", domain.KindOrder))
	assert.Equal(t, 0, resources.count("tenant-1", "store-1", domain.KindCustomer))
	assert.Equal(t, 1, resources.count("tenant-1", "store-1", domain.KindInventory))

	assert.Equal(t, []string{"completed"}, metrics.outcomes)
	assert.Equal(t, 2, metrics.synced[domain.KindCatalogItem])

	// Guard released: the persisted record is back out of syncing.
	persisted, err := stores.GetStore(context.Background(), "tenant-1", "store-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusCompleted, persisted.SyncStatus)
}

func TestResyncOrdersFetchFailureKeepsExistingRows(t *testing.T) {
	svc, stores, resources, platform, metrics := newSyncFixture(t)
	store := seedStore(t, stores)

	// A previous sync left 7 orders behind.
	store.SyncSummary = domain.SyncStats{Orders: 7}
	require.NoError(t, stores.PutStore(context.Background(), store))
	require.NoError(t, resources.BatchPut(context.Background(), []domain.CanonicalResource{
		{TenantID: "tenant-1", StoreID: "store-1", Kind: domain.KindOrder, ExternalID: "900"},
	}))

	platform.ordersErr = errBoom

	result, err := svc.Resync(context.Background(), "tenant-1", "store-1")
	require.NoError(t, err)

	assert.Equal(t, domain.SyncStatusCompleted, result.SyncStatus)
	assert.Equal(t, []domain.ResourceKind{domain.KindOrder}, result.SyncSummary.FailedKinds)
	assert.Equal(t, 7, result.SyncSummary.Orders, "failed kind keeps its previous count")
	assert.Equal(t, 2, result.SyncSummary.CatalogItems, "other kinds still sync")
	assert.Equal(t, 1, resources.count("tenant-1", "store-1", domain.KindOrder), "existing rows are not deleted")

	assert.Equal(t, []string{"partial"}, metrics.outcomes)
}

func TestResyncCatalogWriteFailureFailsInventoryToo(t *testing.T) {
	svc, stores, resources, _, _ := newSyncFixture(t)
	seedStore(t, stores)
	resources.failPut[domain.KindCatalogItem] = true

	result, err := svc.Resync(context.Background(), "tenant-1", "store-1")
	require.NoError(t, err)

	assert.Contains(t, result.SyncSummary.FailedKinds, domain.KindCatalogItem)
	assert.Contains(t, result.SyncSummary.FailedKinds, domain.KindInventory)
	assert.Equal(t, 0, result.SyncSummary.CatalogItems)
	assert.Equal(t, 0, resources.count("tenant-1", "store-1", domain.KindInventory))
}

func TestResyncProfileFetchFailureKeepsStoredFields(t *testing.T) {
	svc, stores, _, platform, _ := newSyncFixture(t)
	seedStore(t, stores)
	platform.profileErr = errBoom

	result, err := svc.Resync(context.Background(), "tenant-1", "store-1")
	require.NoError(t, err)

	assert.Equal(t, domain.SyncStatusCompleted, result.SyncStatus)
	assert.Equal(t, "acme.myshopify.com", result.Name)
	assert.Empty(t, result.Currency)
}

func TestResyncGuardReleasedAfterFinalWriteFailure(t *testing.T) {
	svc, stores, _, _, metrics := newSyncFixture(t)
	seedStore(t, stores)

	// The status write that would normally release the guard fails once.
	stores.failPuts = 1
	_, err := svc.Resync(context.Background(), "tenant-1", "store-1")
	require.Error(t, err)

	persisted, err := stores.GetStore(context.Background(), "tenant-1", "store-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusFailed, persisted.SyncStatus, "interrupted run must not stay in syncing")

	// With storage healthy again, the next resync goes through.
	store, err := svc.Resync(context.Background(), "tenant-1", "store-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusCompleted, store.SyncStatus)
	assert.Equal(t, []string{"failed", "completed"}, metrics.outcomes)
}

func TestResyncAllKindsFailing(t *testing.T) {
	svc, stores, _, platform, metrics := newSyncFixture(t)
	seedStore(t, stores)
	platform.productsErr = errBoom
	platform.ordersErr = errBoom
	platform.customersErr = errBoom

	result, err := svc.Resync(context.Background(), "tenant-1", "store-1")
	require.NoError(t, err)

	assert.Equal(t, domain.SyncStatusFailed, result.SyncStatus)
	assert.Len(t, result.SyncSummary.FailedKinds, 4)
	assert.Equal(t, []string{"failed"}, metrics.outcomes)
}

func TestResyncUnknownStore(t *testing.T) {
	svc, _, _, _, _ := newSyncFixture(t)

	_, err := svc.Resync(context.Background(), "tenant-1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestResyncStoreWithoutToken(t *testing.T) {
	svc, stores, _, _, _ := newSyncFixture(t)
	store := seedStore(t, stores)
	store.AccessToken = ""
	require.NoError(t, stores.PutStore(context.Background(), store))

	_, err := svc.Resync(context.Background(), "tenant-1", "store-1")
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestResyncRejectedWhileSyncRunning(t *testing.T) {
	svc, stores, _, _, _ := newSyncFixture(t)
	store := seedStore(t, stores)
	store.SyncStatus = domain.SyncStatusSyncing
	require.NoError(t, stores.PutStore(context.Background(), store))

	_, err := svc.Resync(context.Background(), "tenant-1", "store-1")
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
}
