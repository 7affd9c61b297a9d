package entity

import (
	"time"

	"commerce-sync-layer/internal/domain"
)

// MongoStoreDoc represents a ConnectedStore in MongoDB. Documents are
// partitioned by tenantId; (tenantId, storeId) is the record key.
type MongoStoreDoc struct {
	TenantID       string            `bson:"tenantId"`
	StoreID        string            `bson:"storeId"`
	Domain         string            `bson:"domain"`
	Name           string            `bson:"name"`
	ConnectionType string            `bson:"connectionType"`
	Status         string            `bson:"status"`
	AccessToken    string            `bson:"accessToken"`
	Scope          string            `bson:"scope"`
	Currency       string            `bson:"currency"`
	Timezone       string            `bson:"timezone"`
	Country        string            `bson:"country"`
	Address        string            `bson:"address"`
	ConnectedAt    time.Time         `bson:"connectedAt"`
	LastSyncAt     *time.Time        `bson:"lastSyncAt,omitempty"`
	SyncStatus     string            `bson:"syncStatus"`
	SyncSummary    MongoSyncStatsDoc `bson:"syncSummary"`
	CreatedAt      time.Time         `bson:"createdAt"`
	UpdatedAt      time.Time         `bson:"updatedAt"`
}

// MongoSyncStatsDoc is the embedded sync summary.
type MongoSyncStatsDoc struct {
	CatalogItems int      `bson:"catalogItems"`
	Orders       int      `bson:"orders"`
	Customers    int      `bson:"customers"`
	Inventory    int      `bson:"inventory"`
	FailedKinds  []string `bson:"failedKinds,omitempty"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoStoreDoc) ToDomain() *domain.ConnectedStore {
	failed := make([]domain.ResourceKind, 0, len(d.SyncSummary.FailedKinds))
	for _, k := range d.SyncSummary.FailedKinds {
		failed = append(failed, domain.ResourceKind(k))
	}
	if len(failed) == 0 {
		failed = nil
	}

	return &domain.ConnectedStore{
		ID:             d.StoreID,
		TenantID:       d.TenantID,
		Domain:         d.Domain,
		Name:           d.Name,
		ConnectionType: d.ConnectionType,
		Status:         d.Status,
		AccessToken:    d.AccessToken,
		Scope:          d.Scope,
		Currency:       d.Currency,
		Timezone:       d.Timezone,
		Country:        d.Country,
		Address:        d.Address,
		ConnectedAt:    d.ConnectedAt,
		LastSyncAt:     d.LastSyncAt,
		SyncStatus:     d.SyncStatus,
		SyncSummary: domain.SyncStats{
			CatalogItems: d.SyncSummary.CatalogItems,
			Orders:       d.SyncSummary.Orders,
			Customers:    d.SyncSummary.Customers,
			Inventory:    d.SyncSummary.Inventory,
			FailedKinds:  failed,
		},
	}
}

// MongoStoreDocFromDomain converts a domain entity to a MongoDB document
func MongoStoreDocFromDomain(store *domain.ConnectedStore) *MongoStoreDoc {
	failed := make([]string, 0, len(store.SyncSummary.FailedKinds))
	for _, k := range store.SyncSummary.FailedKinds {
		failed = append(failed, string(k))
	}

	return &MongoStoreDoc{
		TenantID:       store.TenantID,
		StoreID:        store.ID,
		Domain:         store.Domain,
		Name:           store.Name,
		ConnectionType: store.ConnectionType,
		Status:         store.Status,
		AccessToken:    store.AccessToken,
		Scope:          store.Scope,
		Currency:       store.Currency,
		Timezone:       store.Timezone,
		Country:        store.Country,
		Address:        store.Address,
		ConnectedAt:    store.ConnectedAt,
		LastSyncAt:     store.LastSyncAt,
		SyncStatus:     store.SyncStatus,
		SyncSummary: MongoSyncStatsDoc{
			CatalogItems: store.SyncSummary.CatalogItems,
			Orders:       store.SyncSummary.Orders,
			Customers:    store.SyncSummary.Customers,
			Inventory:    store.SyncSummary.Inventory,
			FailedKinds:  failed,
		},
	}
}
