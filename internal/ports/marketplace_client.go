package ports

import (
	"context"

	"storelink-marketplace-layer/internal/domain"
)

// TokenGrant is the result of a successful authorization-code exchange.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until the access token expires
	ShopID       string
	ShopName     string
}

// MarketplaceClient defines the outbound marketplace API operations the
// connector needs. Search results come back already normalized; a nonzero
// marketplace response code or a transport failure is returned as an error.
type MarketplaceClient interface {
	ExchangeToken(ctx context.Context, cfg *domain.MarketplaceConfig, authCode string) (*TokenGrant, error)
	SearchProducts(ctx context.Context, cfg *domain.MarketplaceConfig, store *domain.StoreConnection, pageSize int) ([]domain.Product, error)
	SearchOrders(ctx context.Context, cfg *domain.MarketplaceConfig, store *domain.StoreConnection, pageSize int) ([]domain.Order, error)
}
