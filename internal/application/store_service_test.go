package application

import (
	"context"
	"testing"

	"commerce-sync-layer/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreServiceList(t *testing.T) {
	stores := newFakeStoreRepo()
	svc := NewStoreService(stores, newFakeResourceRepo(), zerolog.Nop())

	require.NoError(t, stores.PutStore(context.Background(), &domain.ConnectedStore{ID: "s1", TenantID: "tenant-1"}))
	require.NoError(t, stores.PutStore(context.Background(), &domain.ConnectedStore{ID: "s2", TenantID: "tenant-2"}))

	listed, err := svc.List(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "s1", listed[0].ID)
}

func TestStoreServiceGetNotFound(t *testing.T) {
	svc := NewStoreService(newFakeStoreRepo(), newFakeResourceRepo(), zerolog.Nop())

	_, err := svc.Get(context.Background(), "tenant-1", "missing")
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}

func TestStoreServiceDeleteCascadesResources(t *testing.T) {
	stores := newFakeStoreRepo()
	resources := newFakeResourceRepo()
	svc := NewStoreService(stores, resources, zerolog.Nop())

	require.NoError(t, stores.PutStore(context.Background(), &domain.ConnectedStore{ID: "s1", TenantID: "tenant-1"}))
	for _, kind := range domain.SyncedKinds {
		require.NoError(t, resources.BatchPut(context.Background(), []domain.CanonicalResource{
			{TenantID: "tenant-1", StoreID: "s1", Kind: kind, ExternalID: "1"},
		}))
	}

	require.NoError(t, svc.Delete(context.Background(), "tenant-1", "s1"))

	store, err := stores.GetStore(context.Background(), "tenant-1", "s1")
	require.NoError(t, err)
	assert.Nil(t, store)
	for _, kind := range domain.SyncedKinds {
		assert.Equal(t, 0, resources.count("tenant-1", "s1", kind), string(kind))
	}
}

func TestStoreServiceDeleteUnknownStore(t *testing.T) {
	svc := NewStoreService(newFakeStoreRepo(), newFakeResourceRepo(), zerolog.Nop())

	err := svc.Delete(context.Background(), "tenant-1", "missing")
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}
