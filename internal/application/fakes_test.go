package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storelink-marketplace-layer/internal/domain"
	"storelink-marketplace-layer/internal/ports"
)

type fakeConfigRepo struct {
	mu      sync.Mutex
	configs map[string]*domain.MarketplaceConfig
	err     error
}

func newFakeConfigRepo(cfgs ...*domain.MarketplaceConfig) *fakeConfigRepo {
	r := &fakeConfigRepo{configs: map[string]*domain.MarketplaceConfig{}}
	for _, cfg := range cfgs {
		r.configs[cfg.SellerID+"/"+cfg.Marketplace] = cfg
	}
	return r
}

func (r *fakeConfigRepo) GetBySellerAndMarketplace(_ context.Context, sellerID, marketplace string) (*domain.MarketplaceConfig, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configs[sellerID+"/"+marketplace], nil
}

func (r *fakeConfigRepo) Upsert(_ context.Context, cfg *domain.MarketplaceConfig) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.SellerID+"/"+cfg.Marketplace] = cfg
	return nil
}

type fakeStoreRepo struct {
	mu       sync.Mutex
	rows     map[string]*domain.StoreConnection // keyed by id
	nextID   int
	lastSync map[string]time.Time
}

func newFakeStoreRepo(rows ...*domain.StoreConnection) *fakeStoreRepo {
	r := &fakeStoreRepo{
		rows:     map[string]*domain.StoreConnection{},
		lastSync: map[string]time.Time{},
	}
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return r
}

func (r *fakeStoreRepo) ListBySellerAndMarketplace(_ context.Context, sellerID, marketplace string, onlyConnected bool) ([]*domain.StoreConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.StoreConnection
	for _, row := range r.rows {
		if row.SellerID != sellerID || row.Marketplace != marketplace {
			continue
		}
		if onlyConnected && !row.Connected {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeStoreRepo) GetByID(_ context.Context, id string) (*domain.StoreConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakeStoreRepo) Upsert(_ context.Context, conn *domain.StoreConnection) (*domain.StoreConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.SellerID == conn.SellerID && row.ShopID == conn.ShopID {
			saved := *conn
			saved.ID = row.ID
			r.rows[row.ID] = &saved
			return &saved, nil
		}
	}
	r.nextID++
	saved := *conn
	saved.ID = fmt.Sprintf("conn-%d", r.nextID)
	r.rows[saved.ID] = &saved
	return &saved, nil
}

func (r *fakeStoreRepo) UpdateTokens(_ context.Context, sellerID, shopID, accessToken, refreshToken string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.SellerID == sellerID && row.ShopID == shopID {
			row.AccessToken = accessToken
			row.RefreshToken = refreshToken
			row.TokenExpiry = expiry
			return nil
		}
	}
	return fmt.Errorf("store connection not found for shop %s", shopID)
}

func (r *fakeStoreRepo) UpdateLastSync(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("store connection %s not found", id)
	}
	row.LastSyncAt = at
	r.lastSync[id] = at
	return nil
}

func (r *fakeStoreRepo) syncedAt(id string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.lastSync[id]
	return at, ok
}

func (r *fakeStoreRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeStateStore struct {
	mu     sync.Mutex
	states map[string]string
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: map[string]string{}}
}

func (s *fakeStateStore) Save(_ context.Context, state, sellerID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = sellerID
	return nil
}

func (s *fakeStateStore) Take(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sellerID := s.states[state]
	delete(s.states, state)
	return sellerID, nil
}

// fakeMarketplaceClient returns canned results per shop id and counts calls.
type fakeMarketplaceClient struct {
	mu          sync.Mutex
	grant       *ports.TokenGrant
	exchangeErr error
	exchanges   int

	productsByShop map[string][]domain.Product
	ordersByShop   map[string][]domain.Order
	errByShop      map[string]error
	searches       int
}

func (c *fakeMarketplaceClient) ExchangeToken(_ context.Context, _ *domain.MarketplaceConfig, _ string) (*ports.TokenGrant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchanges++
	if c.exchangeErr != nil {
		return nil, c.exchangeErr
	}
	return c.grant, nil
}

func (c *fakeMarketplaceClient) SearchProducts(_ context.Context, _ *domain.MarketplaceConfig, store *domain.StoreConnection, _ int) ([]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches++
	if err := c.errByShop[store.ShopID]; err != nil {
		return nil, err
	}
	return c.productsByShop[store.ShopID], nil
}

func (c *fakeMarketplaceClient) SearchOrders(_ context.Context, _ *domain.MarketplaceConfig, store *domain.StoreConnection, _ int) ([]domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches++
	if err := c.errByShop[store.ShopID]; err != nil {
		return nil, err
	}
	return c.ordersByShop[store.ShopID], nil
}

func (c *fakeMarketplaceClient) searchCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searches
}
