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

// maxBatchSize is the backing store's batch-write limit. Batched calls are
// chunked to this size; a chunk failure fails the whole call.
const maxBatchSize = 25

// MongoResourceRepository implements ResourceRepository using MongoDB
type MongoResourceRepository struct {
	collection *mongo.Collection
}

// NewMongoResourceRepository creates a new MongoDB resource repository
func NewMongoResourceRepository(db *mongo.Database) ports.ResourceRepository {
	return &MongoResourceRepository{
		collection: db.Collection("resources"),
	}
}

// EnsureResourceIndexes creates the unique resource key index.
func EnsureResourceIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("resources").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "storeId", Value: 1},
			{Key: "kind", Value: 1},
			{Key: "externalId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// BatchPut upserts resources in chunks of at most maxBatchSize. There is no
// partial-success result: the first failing chunk fails the call, and the
// caller decides whether the rest of a multi-kind sync continues.
func (r *MongoResourceRepository) BatchPut(ctx context.Context, resources []domain.CanonicalResource) error {
	for _, chunk := range chunkResources(resources, maxBatchSize) {
		models := make([]mongo.WriteModel, 0, len(chunk))
		for _, res := range chunk {
			doc := entity.MongoResourceDocFromDomain(res)
			doc.UpdatedAt = time.Now()
			filter := bson.M{
				"tenantId":   res.TenantID,
				"storeId":    res.StoreID,
				"kind":       string(res.Kind),
				"externalId": res.ExternalID,
			}
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(filter).
				SetReplacement(doc).
				SetUpsert(true))
		}

		if _, err := r.collection.BulkWrite(ctx, models); err != nil {
			return &domain.StorageError{Op: "batch put resources", Err: err}
		}
	}
	return nil
}

// BatchDelete removes every resource of one kind for a store
func (r *MongoResourceRepository) BatchDelete(ctx context.Context, tenantID string, storeID string, kind domain.ResourceKind) error {
	filter := bson.M{
		"tenantId": tenantID,
		"storeId":  storeID,
		"kind":     string(kind),
	}
	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return &domain.StorageError{Op: "batch delete resources", Err: err}
	}
	return nil
}

// chunkResources splits resources into groups of at most size.
func chunkResources(resources []domain.CanonicalResource, size int) [][]domain.CanonicalResource {
	if len(resources) == 0 {
		return nil
	}
	chunks := make([][]domain.CanonicalResource, 0, (len(resources)+size-1)/size)
	for start := 0; start < len(resources); start += size {
		end := start + size
		if end > len(resources) {
			end = len(resources)
		}
		chunks = append(chunks, resources[start:end])
	}
	return chunks
}
