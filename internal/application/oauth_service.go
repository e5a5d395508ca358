package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"storelink-marketplace-layer/internal/domain"
	"storelink-marketplace-layer/internal/ports"

	"github.com/rs/zerolog"
)

const (
	authorizePage = "https://services.tiktokshop.com/open/authorize"
	stateTTL      = 10 * time.Minute
)

// statePayload is the opaque token round-tripped through the marketplace
// redirect. The marketplace treats it as a black box; we carry the
// initiating seller and a nonce so repeated authorizations stay distinct.
type statePayload struct {
	SellerID string `json:"u"`
	Nonce    string `json:"n,omitempty"`
}

// EncodeState packs the seller identifier and a nonce into an OAuth state
// token.
func EncodeState(sellerID, nonce string) string {
	raw, _ := json.Marshal(statePayload{SellerID: sellerID, Nonce: nonce})
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeState recovers the initiating seller from an OAuth state token.
// A malformed token fails with domain.ErrInvalidState before any network
// call is attempted.
func DecodeState(state string) (string, error) {
	if state == "" {
		return "", domain.ErrInvalidState
	}
	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(state)
	}
	if err != nil {
		return "", domain.ErrInvalidState
	}
	var p statePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.SellerID == "" {
		return "", domain.ErrInvalidState
	}
	return p.SellerID, nil
}

// OAuthService manages the authorization-code flow and the resulting store
// connection lifecycle.
type OAuthService struct {
	configs ports.ConfigRepository
	stores  ports.StoreRepository
	states  ports.StateStore
	client  ports.MarketplaceClient
	logger  zerolog.Logger
	now     func() time.Time
}

// NewOAuthService creates a new OAuth service.
func NewOAuthService(
	configs ports.ConfigRepository,
	stores ports.StoreRepository,
	states ports.StateStore,
	client ports.MarketplaceClient,
	logger zerolog.Logger,
) *OAuthService {
	return &OAuthService{
		configs: configs,
		stores:  stores,
		states:  states,
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// AuthorizeURL builds the marketplace authorization link for a seller and
// registers the state token for the later callback.
func (s *OAuthService) AuthorizeURL(ctx context.Context, sellerID string) (string, error) {
	cfg, err := s.configs.GetBySellerAndMarketplace(ctx, sellerID, domain.MarketplaceTikTok)
	if err != nil {
		return "", fmt.Errorf("failed to load marketplace config: %w", err)
	}
	if cfg == nil {
		return "", domain.ErrConfigMissing
	}

	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate state nonce: %w", err)
	}
	state := EncodeState(sellerID, hex.EncodeToString(nonce))

	if err := s.states.Save(ctx, state, sellerID, stateTTL); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s?service_id=%s&state=%s",
		authorizePage,
		url.QueryEscape(cfg.ServiceID),
		url.QueryEscape(state),
	), nil
}

// VerifyState checks that a callback state was minted by this service and
// has not expired or been used before. The state is consumed either way.
func (s *OAuthService) VerifyState(ctx context.Context, state string) error {
	sellerID, err := s.states.Take(ctx, state)
	if err != nil {
		return err
	}
	if sellerID == "" {
		return domain.ErrInvalidState
	}
	return nil
}

// Exchange performs the authorization-code exchange for a seller and
// persists the resulting store connection. It fails closed: nothing is
// persisted unless the marketplace returned a token. Repeating the exchange
// for the same shop updates the existing connection in place.
func (s *OAuthService) Exchange(ctx context.Context, sellerID, code string) (*domain.StoreConnection, error) {
	cfg, err := s.configs.GetBySellerAndMarketplace(ctx, sellerID, domain.MarketplaceTikTok)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}
	if cfg == nil {
		return nil, domain.ErrConfigMissing
	}

	grant, err := s.client.ExchangeToken(ctx, cfg, code)
	if err != nil {
		s.logger.Error().Err(err).Str("seller_id", sellerID).Msg("Failed to exchange authorization code")
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	name := grant.ShopName
	if name == "" {
		name = fallbackStoreName(grant.ShopID)
	}

	now := s.now()
	conn := &domain.StoreConnection{
		SellerID:     sellerID,
		Marketplace:  domain.MarketplaceTikTok,
		StoreName:    name,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		TokenExpiry:  now.Add(time.Duration(grant.ExpiresIn) * time.Second),
		ShopID:       grant.ShopID,
		Connected:    true,
		LastSyncAt:   now,
	}

	saved, err := s.stores.Upsert(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to persist store connection: %w", err)
	}

	s.logger.Info().
		Str("seller_id", sellerID).
		Str("shop_id", grant.ShopID).
		Str("store_name", name).
		Msg("Store connected")

	return saved, nil
}

// fallbackStoreName synthesizes a display name when the token payload
// carries none.
func fallbackStoreName(shopID string) string {
	if len(shopID) > 8 {
		shopID = shopID[:8]
	}
	return "TikTok Shop " + shopID
}
