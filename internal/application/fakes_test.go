package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"commerce-sync-layer/internal/domain"
	"commerce-sync-layer/internal/infrastructure/shopify"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

var errBoom = errors.New("boom")

// fakeStoreRepo keeps stores in a map and honors the single-sync guard the
// way the Mongo implementation does.
type fakeStoreRepo struct {
	mu       sync.Mutex
	stores   map[string]*domain.ConnectedStore
	failPuts int
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: make(map[string]*domain.ConnectedStore)}
}

func (r *fakeStoreRepo) key(tenantID, storeID string) string {
	return tenantID + "/" + storeID
}

func (r *fakeStoreRepo) PutStore(ctx context.Context, store *domain.ConnectedStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPuts > 0 {
		r.failPuts--
		return &domain.StorageError{Op: "put store", Err: errBoom}
	}
	copied := *store
	r.stores[r.key(store.TenantID, store.ID)] = &copied
	return nil
}

func (r *fakeStoreRepo) GetStore(ctx context.Context, tenantID, storeID string) (*domain.ConnectedStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[r.key(tenantID, storeID)]
	if !ok {
		return nil, nil
	}
	copied := *store
	return &copied, nil
}

func (r *fakeStoreRepo) QueryStores(ctx context.Context, tenantID string) ([]*domain.ConnectedStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ConnectedStore
	for _, store := range r.stores {
		if store.TenantID == tenantID {
			copied := *store
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeStoreRepo) DeleteStore(ctx context.Context, tenantID, storeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, r.key(tenantID, storeID))
	return nil
}

func (r *fakeStoreRepo) BeginSync(ctx context.Context, tenantID, storeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[r.key(tenantID, storeID)]
	if !ok || store.SyncStatus == domain.SyncStatusSyncing {
		return false, nil
	}
	store.SyncStatus = domain.SyncStatusSyncing
	return true, nil
}

func (r *fakeStoreRepo) ReleaseSync(ctx context.Context, tenantID, storeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[r.key(tenantID, storeID)]
	if ok && store.SyncStatus == domain.SyncStatusSyncing {
		store.SyncStatus = domain.SyncStatusFailed
	}
	return nil
}

// fakeResourceRepo stores resources per (store, kind) and can fail writes
// for selected kinds.
type fakeResourceRepo struct {
	mu      sync.Mutex
	rows    map[string][]domain.CanonicalResource
	failPut map[domain.ResourceKind]bool
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{
		rows:    make(map[string][]domain.CanonicalResource),
		failPut: make(map[domain.ResourceKind]bool),
	}
}

func (r *fakeResourceRepo) key(tenantID, storeID string, kind domain.ResourceKind) string {
	return tenantID + "/" + storeID + "/" + string(kind)
}

func (r *fakeResourceRepo) BatchPut(ctx context.Context, resources []domain.CanonicalResource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range resources {
		if r.failPut[res.Kind] {
			return errBoom
		}
	}
	for _, res := range resources {
		k := r.key(res.TenantID, res.StoreID, res.Kind)
		r.rows[k] = append(r.rows[k], res)
	}
	return nil
}

func (r *fakeResourceRepo) BatchDelete(ctx context.Context, tenantID, storeID string, kind domain.ResourceKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, r.key(tenantID, storeID, kind))
	return nil
}

func (r *fakeResourceRepo) count(tenantID, storeID string, kind domain.ResourceKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows[r.key(tenantID, storeID, kind)])
}

// fakePlatform returns canned payloads per method, with injectable per-kind
// errors.
type fakePlatform struct {
	profile      *goshopify.Shop
	profileErr   error
	products     []shopify.Product
	productsErr  error
	orders       []shopify.Order
	ordersErr    error
	customers    []shopify.Customer
	customersErr error

	exchangeGrant *shopify.AccessGrant
	exchangeErr   error

	mu            sync.Mutex
	exchangeCalls int
}

func (p *fakePlatform) AuthURL(ctx context.Context, shop string, scopes []string, redirectURI, state string) (string, error) {
	return "https://" + shop + "/admin/oauth/authorize?state=" + state, nil
}

func (p *fakePlatform) ExchangeCode(ctx context.Context, shop, code, redirectURI string) (*shopify.AccessGrant, error) {
	p.mu.Lock()
	p.exchangeCalls++
	p.mu.Unlock()
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.exchangeGrant, nil
}

func (p *fakePlatform) FetchProfile(ctx context.Context, shop, accessToken string) (*goshopify.Shop, error) {
	return p.profile, p.profileErr
}

func (p *fakePlatform) FetchCatalogItems(ctx context.Context, shop, accessToken string, limit int) ([]shopify.Product, error) {
	return p.products, p.productsErr
}

func (p *fakePlatform) FetchOrders(ctx context.Context, shop, accessToken string, limit int) ([]shopify.Order, error) {
	return p.orders, p.ordersErr
}

func (p *fakePlatform) FetchCustomers(ctx context.Context, shop, accessToken string, limit int) ([]shopify.Customer, error) {
	return p.customers, p.customersErr
}

// fakeEncryptor is a reversible stand-in for the AES service.
type fakeEncryptor struct{}

func (fakeEncryptor) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }

func (fakeEncryptor) Decrypt(ciphertext string) (string, error) {
	if len(ciphertext) < 4 || ciphertext[:4] != "enc:" {
		return "", errBoom
	}
	return ciphertext[4:], nil
}

// fakeMetrics records sync outcomes for assertions.
type fakeMetrics struct {
	mu       sync.Mutex
	outcomes []string
	synced   map[domain.ResourceKind]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{synced: make(map[domain.ResourceKind]int)}
}

func (m *fakeMetrics) ObserveSync(outcome string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *fakeMetrics) AddSynced(kind domain.ResourceKind, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced[kind] += count
}
