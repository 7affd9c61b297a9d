package ports

import (
	"context"

	"commerce-sync-layer/internal/infrastructure/shopify"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// PlatformClient defines the interface for the external platform's OAuth
// endpoints and read APIs. List reads are bounded by the caller-supplied
// limit; a non-success response is an error the orchestrator may downgrade
// to a per-kind soft failure.
type PlatformClient interface {
	// Authentication
	AuthURL(ctx context.Context, shop string, scopes []string, redirectURI string, state string) (string, error)
	ExchangeCode(ctx context.Context, shop string, code string, redirectURI string) (*shopify.AccessGrant, error)

	// Read APIs
	FetchProfile(ctx context.Context, shop string, accessToken string) (*goshopify.Shop, error)
	FetchCatalogItems(ctx context.Context, shop string, accessToken string, limit int) ([]shopify.Product, error)
	FetchOrders(ctx context.Context, shop string, accessToken string, limit int) ([]shopify.Order, error)
	FetchCustomers(ctx context.Context, shop string, accessToken string, limit int) ([]shopify.Customer, error)
}
