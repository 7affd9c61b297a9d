package entity

import (
	"time"

	"commerce-sync-layer/internal/domain"
)

// MongoResourceDoc represents one canonical resource in MongoDB. The tuple
// (tenantId, storeId, kind, externalId) is unique.
type MongoResourceDoc struct {
	TenantID   string      `bson:"tenantId"`
	StoreID    string      `bson:"storeId"`
	Kind       string      `bson:"kind"`
	ExternalID string      `bson:"externalId"`
	Payload    interface{} `bson:"payload"`
	UpdatedAt  time.Time   `bson:"updatedAt"`
}

// MongoResourceDocFromDomain converts a domain envelope to a MongoDB document
func MongoResourceDocFromDomain(r domain.CanonicalResource) *MongoResourceDoc {
	return &MongoResourceDoc{
		TenantID:   r.TenantID,
		StoreID:    r.StoreID,
		Kind:       string(r.Kind),
		ExternalID: r.ExternalID,
		Payload:    r.Payload,
		UpdatedAt:  time.Now(),
	}
}
