package domain

import "time"

// Store status values
const (
	StoreStatusActive = "active"
)

// Sync status values on a ConnectedStore
const (
	SyncStatusPending   = "pending"
	SyncStatusSyncing   = "syncing"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// ConnectionTypeShopify tags the platform a store is connected to.
const ConnectionTypeShopify = "shopify"

// ConnectedStore is one authorized link between a tenant and an external
// platform account. The access token is stored encrypted and is written once
// per connection; re-running the OAuth flow replaces it.
type ConnectedStore struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	Domain         string     `json:"domain"`
	Name           string     `json:"name"`
	ConnectionType string     `json:"connection_type"`
	Status         string     `json:"status"`
	AccessToken    string     `json:"-"`
	Scope          string     `json:"scope"`
	Currency       string     `json:"currency"`
	Timezone       string     `json:"timezone"`
	Country        string     `json:"country"`
	Address        string     `json:"address"`
	ConnectedAt    time.Time  `json:"connected_at"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	SyncStatus     string     `json:"sync_status"`
	SyncSummary    SyncStats  `json:"sync_summary"`
}

// SyncStats summarizes the outcome of the most recent sync. Counts for kinds
// that failed to fetch keep their previous value; the failed kinds are listed
// separately.
type SyncStats struct {
	CatalogItems int            `json:"catalogItems"`
	Orders       int            `json:"orders"`
	Customers    int            `json:"customers"`
	Inventory    int            `json:"inventory"`
	FailedKinds  []ResourceKind `json:"failedKinds,omitempty"`
}
