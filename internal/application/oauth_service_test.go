package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"storelink-marketplace-layer/internal/domain"
	"storelink-marketplace-layer/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sellerConfig(sellerID string) *domain.MarketplaceConfig {
	return &domain.MarketplaceConfig{
		SellerID:    sellerID,
		Marketplace: domain.MarketplaceTikTok,
		AppKey:      "app-key",
		AppSecret:   "app-secret",
		ServiceID:   "svc-123",
		APIBaseURL:  "https://open-api.example.com",
	}
}

func TestDecodeStateRoundTrip(t *testing.T) {
	state := EncodeState("seller-42", "nonce-1")
	sellerID, err := DecodeState(state)
	require.NoError(t, err)
	assert.Equal(t, "seller-42", sellerID)
}

func TestDecodeStateRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"not base64 at all!!!",
		"aGVsbG8=",             // valid base64, not JSON
		EncodeState("", "n-1"), // well-formed but no seller
	}
	for _, state := range cases {
		_, err := DecodeState(state)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "state %q", state)
	}
}

func TestAuthorizeURL(t *testing.T) {
	states := newFakeStateStore()
	svc := NewOAuthService(newFakeConfigRepo(sellerConfig("seller-42")), newFakeStoreRepo(), states, &fakeMarketplaceClient{}, zerolog.Nop())

	link, err := svc.AuthorizeURL(context.Background(), "seller-42")
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, authorizePage))
	assert.Equal(t, "svc-123", parsed.Query().Get("service_id"))

	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	sellerID, err := DecodeState(state)
	require.NoError(t, err)
	assert.Equal(t, "seller-42", sellerID)

	// The state was registered for the callback.
	owner, err := states.Take(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "seller-42", owner)
}

func TestAuthorizeURLWithoutConfig(t *testing.T) {
	svc := NewOAuthService(newFakeConfigRepo(), newFakeStoreRepo(), newFakeStateStore(), &fakeMarketplaceClient{}, zerolog.Nop())

	_, err := svc.AuthorizeURL(context.Background(), "seller-42")
	assert.ErrorIs(t, err, domain.ErrConfigMissing)
}

func TestVerifyStateConsumesToken(t *testing.T) {
	states := newFakeStateStore()
	require.NoError(t, states.Save(context.Background(), "state-1", "seller-42", time.Minute))

	svc := NewOAuthService(newFakeConfigRepo(), newFakeStoreRepo(), states, &fakeMarketplaceClient{}, zerolog.Nop())

	require.NoError(t, svc.VerifyState(context.Background(), "state-1"))

	// Second use of the same state is rejected.
	assert.ErrorIs(t, svc.VerifyState(context.Background(), "state-1"), domain.ErrInvalidState)
}

func TestVerifyStateUnknownToken(t *testing.T) {
	svc := NewOAuthService(newFakeConfigRepo(), newFakeStoreRepo(), newFakeStateStore(), &fakeMarketplaceClient{}, zerolog.Nop())
	assert.ErrorIs(t, svc.VerifyState(context.Background(), "never-issued"), domain.ErrInvalidState)
}

func TestExchangePersistsConnection(t *testing.T) {
	stores := newFakeStoreRepo()
	client := &fakeMarketplaceClient{grant: &ports.TokenGrant{
		AccessToken:  "tok-1",
		RefreshToken: "ref-1",
		ExpiresIn:    7200,
		ShopID:       "shop-abc",
		ShopName:     "Acme Goods",
	}}
	svc := NewOAuthService(newFakeConfigRepo(sellerConfig("seller-42")), stores, newFakeStateStore(), client, zerolog.Nop())
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	conn, err := svc.Exchange(context.Background(), "seller-42", "auth-code-1")
	require.NoError(t, err)

	assert.Equal(t, "seller-42", conn.SellerID)
	assert.Equal(t, domain.MarketplaceTikTok, conn.Marketplace)
	assert.Equal(t, "Acme Goods", conn.StoreName)
	assert.Equal(t, "tok-1", conn.AccessToken)
	assert.Equal(t, "ref-1", conn.RefreshToken)
	assert.Equal(t, now.Add(7200*time.Second), conn.TokenExpiry)
	assert.Equal(t, "shop-abc", conn.ShopID)
	assert.True(t, conn.Connected)
	assert.Equal(t, 1, stores.count())
}

func TestExchangeFallbackStoreName(t *testing.T) {
	client := &fakeMarketplaceClient{grant: &ports.TokenGrant{
		AccessToken: "tok-1",
		ShopID:      "7495032481abcdef",
	}}
	svc := NewOAuthService(newFakeConfigRepo(sellerConfig("seller-42")), newFakeStoreRepo(), newFakeStateStore(), client, zerolog.Nop())

	conn, err := svc.Exchange(context.Background(), "seller-42", "auth-code-1")
	require.NoError(t, err)
	assert.Equal(t, "TikTok Shop 74950324", conn.StoreName)
}

func TestExchangeWithoutConfig(t *testing.T) {
	client := &fakeMarketplaceClient{}
	svc := NewOAuthService(newFakeConfigRepo(), newFakeStoreRepo(), newFakeStateStore(), client, zerolog.Nop())

	_, err := svc.Exchange(context.Background(), "seller-42", "auth-code-1")
	assert.ErrorIs(t, err, domain.ErrConfigMissing)
	assert.Equal(t, 0, client.exchanges)
}

func TestExchangeAPIErrorPersistsNothing(t *testing.T) {
	stores := newFakeStoreRepo()
	client := &fakeMarketplaceClient{exchangeErr: &domain.APIError{Code: 36004, Message: "auth_code expired"}}
	svc := NewOAuthService(newFakeConfigRepo(sellerConfig("seller-42")), stores, newFakeStateStore(), client, zerolog.Nop())

	_, err := svc.Exchange(context.Background(), "seller-42", "stale-code")
	require.Error(t, err)

	var apiErr *domain.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, stores.count())
}

func TestExchangeIsIdempotentPerShop(t *testing.T) {
	stores := newFakeStoreRepo()
	client := &fakeMarketplaceClient{grant: &ports.TokenGrant{
		AccessToken: "tok-1",
		ExpiresIn:   3600,
		ShopID:      "shop-abc",
		ShopName:    "Acme Goods",
	}}
	svc := NewOAuthService(newFakeConfigRepo(sellerConfig("seller-42")), stores, newFakeStateStore(), client, zerolog.Nop())

	first, err := svc.Exchange(context.Background(), "seller-42", "code-1")
	require.NoError(t, err)

	client.grant.AccessToken = "tok-2"
	second, err := svc.Exchange(context.Background(), "seller-42", "code-2")
	require.NoError(t, err)

	// The same shop reuses the existing row with fresh tokens.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "tok-2", second.AccessToken)
	assert.Equal(t, 1, stores.count())
}
