package ports

import (
	"context"
	"time"

	"storelink-marketplace-layer/internal/domain"
)

// ConfigRepository persists per-seller marketplace credentials.
// Implementations return (nil, nil) when no config is on file.
type ConfigRepository interface {
	GetBySellerAndMarketplace(ctx context.Context, sellerID, marketplace string) (*domain.MarketplaceConfig, error)
	Upsert(ctx context.Context, cfg *domain.MarketplaceConfig) error
}

// StoreRepository persists store connections. Upsert is keyed by the
// natural key (SellerID, ShopID) and returns the persisted row.
type StoreRepository interface {
	ListBySellerAndMarketplace(ctx context.Context, sellerID, marketplace string, onlyConnected bool) ([]*domain.StoreConnection, error)
	GetByID(ctx context.Context, id string) (*domain.StoreConnection, error)
	Upsert(ctx context.Context, conn *domain.StoreConnection) (*domain.StoreConnection, error)
	UpdateTokens(ctx context.Context, sellerID, shopID, accessToken, refreshToken string, expiry time.Time) error
	UpdateLastSync(ctx context.Context, id string, at time.Time) error
}

// StateStore keeps short-lived OAuth state tokens between the authorize
// redirect and the callback. Take consumes the token: a second Take for the
// same state returns "".
type StateStore interface {
	Save(ctx context.Context, state, sellerID string, ttl time.Duration) error
	Take(ctx context.Context, state string) (string, error)
}
