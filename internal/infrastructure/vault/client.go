package vault

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"commerce-sync-layer/internal/domain"
	"commerce-sync-layer/internal/ports"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const credentialsDocID = "platform_credentials"

type credentialsDoc struct {
	ID              string    `bson:"_id"`
	APIKey          string    `bson:"apiKey"`
	EncryptedSecret string    `bson:"encryptedSecret"`
	UpdatedAt       time.Time `bson:"updatedAt"`
}

// Client retrieves the integration's own API key and secret. The secret is
// stored encrypted in the settings collection, with SHOPIFY_API_KEY and
// SHOPIFY_API_SECRET environment variables as a fallback. The first
// successful fetch is cached for the process lifetime; the client is
// constructed in main and injected, never a package-level singleton.
type Client struct {
	settings *mongo.Collection
	enc      ports.EncryptionService
	logger   zerolog.Logger

	mu     sync.Mutex
	cached *domain.ClientCredentials
}

// NewClient creates a vault client backed by the settings collection.
func NewClient(db *mongo.Database, enc ports.EncryptionService, logger zerolog.Logger) *Client {
	return &Client{
		settings: db.Collection("settings"),
		enc:      enc,
		logger:   logger,
	}
}

// Credentials returns the integration's client credentials, fetching them at
// most once per process.
func (c *Client) Credentials(ctx context.Context) (domain.ClientCredentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil {
		return *c.cached, nil
	}

	creds, err := c.fetch(ctx)
	if err != nil {
		return domain.ClientCredentials{}, err
	}

	c.cached = &creds
	return creds, nil
}

func (c *Client) fetch(ctx context.Context) (domain.ClientCredentials, error) {
	var doc credentialsDoc
	err := c.settings.FindOne(ctx, bson.M{"_id": credentialsDocID}).Decode(&doc)
	if err == nil {
		secret, decErr := c.enc.Decrypt(doc.EncryptedSecret)
		if decErr != nil {
			return domain.ClientCredentials{}, fmt.Errorf("failed to decrypt API secret: %w", decErr)
		}
		return domain.ClientCredentials{APIKey: doc.APIKey, APISecret: secret}, nil
	}
	if err != mongo.ErrNoDocuments {
		c.logger.Warn().Err(err).Msg("Credentials lookup failed, trying environment fallback")
	}

	apiKey := os.Getenv("SHOPIFY_API_KEY")
	apiSecret := os.Getenv("SHOPIFY_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		return domain.ClientCredentials{}, fmt.Errorf("platform credentials not configured: no settings document and SHOPIFY_API_KEY/SHOPIFY_API_SECRET not set")
	}

	c.logger.Info().Msg("Using platform credentials from environment")
	return domain.ClientCredentials{APIKey: apiKey, APISecret: apiSecret}, nil
}
