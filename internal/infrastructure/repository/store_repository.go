package repository

import (
	"context"
	"time"

	"commerce-sync-layer/internal/domain"
	"commerce-sync-layer/internal/infrastructure/repository/entity"
	"commerce-sync-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStoreRepository implements StoreRepository using MongoDB
type MongoStoreRepository struct {
	collection *mongo.Collection
}

// NewMongoStoreRepository creates a new MongoDB store repository
func NewMongoStoreRepository(db *mongo.Database) ports.StoreRepository {
	return &MongoStoreRepository{
		collection: db.Collection("stores"),
	}
}

// EnsureStoreIndexes creates the (tenantId, storeId) unique index.
func EnsureStoreIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("stores").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "storeId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// PutStore creates or replaces a store record
func (r *MongoStoreRepository) PutStore(ctx context.Context, store *domain.ConnectedStore) error {
	doc := entity.MongoStoreDocFromDomain(store)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"tenantId": store.TenantID, "storeId": store.ID}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return &domain.StorageError{Op: "put store", Err: err}
	}

	return nil
}

// GetStore retrieves a store by ID within a tenant
func (r *MongoStoreRepository) GetStore(ctx context.Context, tenantID string, storeID string) (*domain.ConnectedStore, error) {
	var doc entity.MongoStoreDoc
	filter := bson.M{"tenantId": tenantID, "storeId": storeID}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get store", Err: err}
	}

	return doc.ToDomain(), nil
}

// QueryStores retrieves all stores owned by a tenant
func (r *MongoStoreRepository) QueryStores(ctx context.Context, tenantID string) ([]*domain.ConnectedStore, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return nil, &domain.StorageError{Op: "query stores", Err: err}
	}
	defer cursor.Close(ctx)

	var stores []*domain.ConnectedStore
	for cursor.Next(ctx) {
		var doc entity.MongoStoreDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, &domain.StorageError{Op: "decode store", Err: err}
		}
		stores = append(stores, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, &domain.StorageError{Op: "query stores", Err: err}
	}

	return stores, nil
}

// DeleteStore removes a store record
func (r *MongoStoreRepository) DeleteStore(ctx context.Context, tenantID string, storeID string) error {
	filter := bson.M{"tenantId": tenantID, "storeId": storeID}
	_, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return &domain.StorageError{Op: "delete store", Err: err}
	}
	return nil
}

// BeginSync acquires the per-store sync guard with a conditional update:
// the status flips to syncing only when no sync is currently running.
func (r *MongoStoreRepository) BeginSync(ctx context.Context, tenantID string, storeID string) (bool, error) {
	filter := bson.M{
		"tenantId":   tenantID,
		"storeId":    storeID,
		"syncStatus": bson.M{"$ne": domain.SyncStatusSyncing},
	}
	update := bson.M{"$set": bson.M{
		"syncStatus": domain.SyncStatusSyncing,
		"updatedAt":  time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, &domain.StorageError{Op: "begin sync", Err: err}
	}

	return result.MatchedCount == 1, nil
}

// ReleaseSync drops a held sync guard, conditionally flipping syncing to
// failed so an interrupted run never blocks the next one.
func (r *MongoStoreRepository) ReleaseSync(ctx context.Context, tenantID string, storeID string) error {
	filter := bson.M{
		"tenantId":   tenantID,
		"storeId":    storeID,
		"syncStatus": domain.SyncStatusSyncing,
	}
	update := bson.M{"$set": bson.M{
		"syncStatus": domain.SyncStatusFailed,
		"updatedAt":  time.Now(),
	}}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return &domain.StorageError{Op: "release sync", Err: err}
	}
	return nil
}
