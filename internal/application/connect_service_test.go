package application

import (
	"context"
	"strings"
	"testing"

	"commerce-sync-layer/internal/domain"
	"commerce-sync-layer/internal/infrastructure/shopify"
	"commerce-sync-layer/internal/infrastructure/state"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type connectFixture struct {
	svc       *ConnectService
	states    *state.MemoryStore
	stores    *fakeStoreRepo
	resources *fakeResourceRepo
	platform  *fakePlatform
}

func newConnectFixture(t *testing.T) *connectFixture {
	t.Helper()
	stores := newFakeStoreRepo()
	resources := newFakeResourceRepo()
	platform := &fakePlatform{
		profile:       &goshopify.Shop{Name: "Acme", Currency: "EUR"},
		products:      testProducts(),
		exchangeGrant: &shopify.AccessGrant{AccessToken: "token-abc", Scope: "read_products,read_orders"},
	}
	states := state.NewMemoryStore()
	syncSvc := NewSyncService(stores, resources, platform, fakeEncryptor{}, newFakeMetrics(), zerolog.Nop(), 50)
	svc := NewConnectService(
		states,
		platform,
		stores,
		fakeEncryptor{},
		syncSvc,
		zerolog.Nop(),
		"https://sync.example.com",
		[]string{"read_products", "read_orders", "read_customers"},
	)
	return &connectFixture{svc: svc, states: states, stores: stores, resources: resources, platform: platform}
}

func TestBeginConnectRejectsInvalidDomain(t *testing.T) {
	f := newConnectFixture(t)

	for _, domainName := range []string{"", "acme.example.com", "acme", "bad_chars.myshopify.com"} {
		_, err := f.svc.BeginConnect(context.Background(), "tenant-1", domainName)
		assert.ErrorIs(t, err, domain.ErrInvalidDomain, domainName)
	}
}

func TestBeginConnectIssuesConsumableState(t *testing.T) {
	f := newConnectFixture(t)

	authURL, err := f.svc.BeginConnect(context.Background(), "tenant-1", "Acme.myshopify.com")
	require.NoError(t, err)

	// The state token in the URL must be consumable exactly once.
	idx := strings.Index(authURL, "state=")
	require.GreaterOrEqual(t, idx, 0)
	token := authURL[idx+len("state="):]

	record, err := f.states.Consume(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "tenant-1", record.TenantID)
	assert.Equal(t, "acme.myshopify.com", record.Domain)

	record, err = f.states.Consume(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestCompleteConnectUnknownState(t *testing.T) {
	f := newConnectFixture(t)

	_, err := f.svc.CompleteConnect(context.Background(), "acme.myshopify.com", "code", "no-such-state")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	stores, err := f.stores.QueryStores(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Empty(t, stores, "a rejected callback must not create a store")
}

func TestCompleteConnectShopMismatch(t *testing.T) {
	f := newConnectFixture(t)

	token, err := f.states.Issue(context.Background(), "tenant-1", "acme.myshopify.com")
	require.NoError(t, err)

	_, err = f.svc.CompleteConnect(context.Background(), "other.myshopify.com", "code", token)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCompleteConnectExchangeFailureIsTerminal(t *testing.T) {
	f := newConnectFixture(t)
	f.platform.exchangeErr = &domain.ExchangeError{StatusCode: 401}

	token, err := f.states.Issue(context.Background(), "tenant-1", "acme.myshopify.com")
	require.NoError(t, err)

	_, err = f.svc.CompleteConnect(context.Background(), "acme.myshopify.com", "bad-code", token)

	var exchangeErr *domain.ExchangeError
	require.ErrorAs(t, err, &exchangeErr)
	assert.Equal(t, 401, exchangeErr.StatusCode)

	stores, err := f.stores.QueryStores(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Empty(t, stores)
}

func TestCompleteConnectCreatesStoreAndRunsFirstSync(t *testing.T) {
	f := newConnectFixture(t)

	token, err := f.states.Issue(context.Background(), "tenant-1", "acme.myshopify.com")
	require.NoError(t, err)

	store, err := f.svc.CompleteConnect(context.Background(), "acme.myshopify.com", "code", token)
	require.NoError(t, err)
	require.NotNil(t, store)

	assert.NotEmpty(t, store.ID)
	assert.Equal(t, "tenant-1", store.TenantID)
	assert.Equal(t, domain.ConnectionTypeShopify, store.ConnectionType)
	assert.Equal(t, domain.StoreStatusActive, store.Status)
	assert.Equal(t, "enc:token-abc", store.AccessToken, "token is stored encrypted")
	assert.Equal(t, "read_products,read_orders", store.Scope)

	// First sync ran against the freshly granted token.
	assert.Equal(t, domain.SyncStatusCompleted, store.SyncStatus)
	assert.Equal(t, 2, store.SyncSummary.CatalogItems)
	assert.Equal(t, 2, f.resources.count("tenant-1", store.ID, domain.KindCatalogItem))
	assert.Equal(t, "Acme", store.Name)

	// The code was exchanged exactly once.
	assert.Equal(t, 1, f.platform.exchangeCalls)
}

func TestCompleteConnectFirstSyncFailureStillConnects(t *testing.T) {
	f := newConnectFixture(t)
	f.platform.productsErr = errBoom
	f.platform.ordersErr = errBoom
	f.platform.customersErr = errBoom
	f.platform.profileErr = errBoom

	token, err := f.states.Issue(context.Background(), "tenant-1", "acme.myshopify.com")
	require.NoError(t, err)

	store, err := f.svc.CompleteConnect(context.Background(), "acme.myshopify.com", "code", token)
	require.NoError(t, err, "sync trouble must not fail the callback")
	require.NotNil(t, store)

	assert.Equal(t, domain.StoreStatusActive, store.Status)
	assert.Equal(t, domain.SyncStatusFailed, store.SyncStatus)
	assert.Len(t, store.SyncSummary.FailedKinds, 4)
}
