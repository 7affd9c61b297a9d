package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"commerce-sync-layer/internal/domain"
	"commerce-sync-layer/internal/infrastructure/shopify"
	"commerce-sync-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConnectService runs the OAuth connection flow: issuing the CSRF state for
// the outbound redirect, and turning the callback's single-use code into a
// connected, synced store.
type ConnectService struct {
	states   ports.OAuthStateStore
	platform ports.PlatformClient
	stores   ports.StoreRepository
	enc      ports.EncryptionService
	sync     *SyncService
	logger   zerolog.Logger
	appURL   string
	scopes   []string
}

// NewConnectService creates a new connect service.
func NewConnectService(
	states ports.OAuthStateStore,
	platform ports.PlatformClient,
	stores ports.StoreRepository,
	enc ports.EncryptionService,
	sync *SyncService,
	logger zerolog.Logger,
	appURL string,
	scopes []string,
) *ConnectService {
	return &ConnectService{
		states:   states,
		platform: platform,
		stores:   stores,
		enc:      enc,
		sync:     sync,
		logger:   logger,
		appURL:   appURL,
		scopes:   scopes,
	}
}

// BeginConnect issues a state token for the tenant and returns the consent
// URL the user must be sent to.
func (s *ConnectService) BeginConnect(ctx context.Context, tenantID string, shopDomain string) (string, error) {
	shopDomain = strings.ToLower(strings.TrimSpace(shopDomain))
	if !shopify.ValidShopDomain(shopDomain) {
		return "", domain.ErrInvalidDomain
	}

	state, err := s.states.Issue(ctx, tenantID, shopDomain)
	if err != nil {
		return "", err
	}

	authURL, err := s.platform.AuthURL(ctx, shopDomain, s.scopes, s.callbackURL(), state)
	if err != nil {
		return "", fmt.Errorf("failed to generate auth url: %w", err)
	}

	s.logger.Info().
		Str("tenantId", tenantID).
		Str("shop", shopDomain).
		Msg("Connection initiated")

	return authURL, nil
}

// CompleteConnect is the terminal step of the OAuth flow. The state token is
// consumed first and must match the shop it was issued for; a miss is
// terminal (ErrInvalidState) and leaves nothing behind. The store record is
// created as soon as the exchange succeeds, before any data is fetched, so a
// failed first sync still leaves a connected store.
func (s *ConnectService) CompleteConnect(ctx context.Context, shopDomain string, code string, stateToken string) (*domain.ConnectedStore, error) {
	record, err := s.states.Consume(ctx, stateToken)
	if err != nil {
		return nil, err
	}
	if record == nil || record.Domain != shopDomain {
		return nil, domain.ErrInvalidState
	}

	ctx = domain.WithTenantID(ctx, record.TenantID)

	grant, err := s.platform.ExchangeCode(ctx, shopDomain, code, s.callbackURL())
	if err != nil {
		return nil, err
	}

	encryptedToken, err := s.enc.Encrypt(grant.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	now := time.Now().UTC()
	store := &domain.ConnectedStore{
		ID:             uuid.NewString(),
		TenantID:       record.TenantID,
		Domain:         shopDomain,
		Name:           shopDomain,
		ConnectionType: domain.ConnectionTypeShopify,
		Status:         domain.StoreStatusActive,
		AccessToken:    encryptedToken,
		Scope:          grant.Scope,
		ConnectedAt:    now,
		SyncStatus:     domain.SyncStatusPending,
	}
	if err := s.stores.PutStore(ctx, store); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tenantId", record.TenantID).
		Str("storeId", store.ID).
		Str("shop", shopDomain).
		Msg("Store connected, starting first sync")

	if _, err := s.stores.BeginSync(ctx, store.TenantID, store.ID); err != nil {
		s.logger.Warn().Err(err).Str("storeId", store.ID).Msg("Could not mark first sync as running")
	}
	// Sync-flow errors land on the store's status fields, not on the
	// callback: there may be no UI session left waiting for them.
	if err := s.sync.Run(ctx, store, grant.AccessToken); err != nil {
		s.logger.Error().Err(err).Str("storeId", store.ID).Msg("First sync failed")
	}

	return store, nil
}

func (s *ConnectService) callbackURL() string {
	return strings.TrimSuffix(s.appURL, "/") + "/auth/callback"
}
