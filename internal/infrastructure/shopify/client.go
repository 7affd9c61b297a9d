package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"commerce-sync-layer/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const apiVersion = "2024-01"

// DefaultPageSize bounds each paginated read when the caller does not
// override it.
const DefaultPageSize = 50

// CredentialSource provides the integration's own client credentials.
type CredentialSource interface {
	Credentials(ctx context.Context) (domain.ClientCredentials, error)
}

// Client is an authenticated client for the platform's OAuth endpoints and
// versioned REST reads. Shop profile reads go through the go-shopify SDK;
// list reads and the token exchange are direct HTTP because the SDK cannot
// express their contracts (redirect_uri on exchange, nullable inventory
// quantities on variants).
type Client struct {
	creds      CredentialSource
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
	scheme     string
}

// NewClient creates a platform client with the default request timeout and
// rate limit.
func NewClient(creds CredentialSource, logger zerolog.Logger) *Client {
	return NewClientWithOptions(creds, logger, NewRateLimiter(), &http.Client{Timeout: 15 * time.Second})
}

// NewClientWithOptions creates a platform client with an explicit rate
// limiter and HTTP client.
func NewClientWithOptions(creds CredentialSource, logger zerolog.Logger, limiter *rate.Limiter, httpClient *http.Client) *Client {
	return &Client{
		creds:      creds,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
		scheme:     "https",
	}
}

// NewRateLimiter returns the client-side limiter for platform API calls.
// The platform's REST bucket refills at 2 requests per second.
func NewRateLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(2), 4)
}

// AuthURL builds the authorization URL the user is redirected to for
// consent. The state token ties the redirect back to the issuing tenant.
func (c *Client) AuthURL(ctx context.Context, shop string, scopes []string, redirectURI string, state string) (string, error) {
	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load client credentials: %w", err)
	}

	authURL := fmt.Sprintf(
		"%s://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		c.scheme,
		shop,
		creds.APIKey,
		url.QueryEscape(strings.Join(scopes, ",")),
		url.QueryEscape(redirectURI),
		url.QueryEscape(state),
	)

	c.logger.Info().
		Str("shop", shop).
		Strs("scopes", scopes).
		Msg("Generated OAuth authorization URL")

	return authURL, nil
}

// ExchangeCode exchanges a single-use authorization code for an access
// token. Non-200 responses surface as *domain.ExchangeError; the attempt is
// never retried since the code is spent either way.
func (c *Client) ExchangeCode(ctx context.Context, shop string, code string, redirectURI string) (*AccessGrant, error) {
	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load client credentials: %w", err)
	}

	values := url.Values{}
	values.Set("client_id", creds.APIKey)
	values.Set("client_secret", creds.APISecret)
	values.Set("code", code)
	if redirectURI != "" {
		values.Set("redirect_uri", redirectURI)
	}

	tokenURL := fmt.Sprintf("%s://%s/admin/oauth/access_token", c.scheme, shop)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		c.logger.Warn().
			Str("shop", shop).
			Int("status", resp.StatusCode).
			Msg("Token exchange rejected")
		return nil, &domain.ExchangeError{StatusCode: resp.StatusCode}
	}

	var grant AccessGrant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	c.logger.Info().
		Str("shop", shop).
		Str("granted_scope", grant.Scope).
		Msg("Token exchange completed")

	return &grant, nil
}

// FetchProfile retrieves the shop profile via the go-shopify SDK.
func (c *Client) FetchProfile(ctx context.Context, shop string, accessToken string) (*goshopify.Shop, error) {
	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load client credentials: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	app := goshopify.App{
		ApiKey:    creds.APIKey,
		ApiSecret: creds.APISecret,
	}
	sdk, err := goshopify.NewClient(app, shop, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	profile, err := sdk.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return profile, nil
}

// FetchCatalogItems lists products, bounded by limit.
func (c *Client) FetchCatalogItems(ctx context.Context, shop string, accessToken string, limit int) ([]Product, error) {
	var envelope struct {
		Products []Product `json:"products"`
	}
	query := url.Values{"limit": {strconv.Itoa(pageSize(limit))}}
	if err := c.get(ctx, shop, accessToken, "products.json", query, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return envelope.Products, nil
}

// FetchOrders lists orders of any status, bounded by limit.
func (c *Client) FetchOrders(ctx context.Context, shop string, accessToken string, limit int) ([]Order, error) {
	var envelope struct {
		Orders []Order `json:"orders"`
	}
	query := url.Values{"limit": {strconv.Itoa(pageSize(limit))}, "status": {"any"}}
	if err := c.get(ctx, shop, accessToken, "orders.json", query, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return envelope.Orders, nil
}

// FetchCustomers lists customers, bounded by limit.
func (c *Client) FetchCustomers(ctx context.Context, shop string, accessToken string, limit int) ([]Customer, error) {
	var envelope struct {
		Customers []Customer `json:"customers"`
	}
	query := url.Values{"limit": {strconv.Itoa(pageSize(limit))}}
	if err := c.get(ctx, shop, accessToken, "customers.json", query, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return envelope.Customers, nil
}

func (c *Client) get(ctx context.Context, shop string, accessToken string, resource string, query url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u := fmt.Sprintf("%s://%s/admin/api/%s/%s?%s", c.scheme, shop, apiVersion, resource, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func pageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	return limit
}

// ValidShopDomain reports whether a shop domain looks like a platform store
// domain. Connection attempts with anything else are rejected up front.
func ValidShopDomain(shop string) bool {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if !strings.HasSuffix(shop, ".myshopify.com") {
		return false
	}
	name := strings.TrimSuffix(shop, ".myshopify.com")
	if name == "" {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}
