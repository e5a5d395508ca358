package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storelink-marketplace-layer/internal/domain"
	"storelink-marketplace-layer/internal/metrics"
	"storelink-marketplace-layer/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSyncConcurrency = 4
	syncPageSize           = 50
)

// SyncService aggregates catalog and order data across every connected
// store of a seller. It fails open: a store whose call fails is skipped,
// and a seller with no credentials on file gets an empty result rather
// than an error.
type SyncService struct {
	configs     ports.ConfigRepository
	stores      ports.StoreRepository
	client      ports.MarketplaceClient
	logger      zerolog.Logger
	concurrency int
	now         func() time.Time
}

// NewSyncService creates a new sync service. Concurrency caps the number of
// stores queried in parallel.
func NewSyncService(
	configs ports.ConfigRepository,
	stores ports.StoreRepository,
	client ports.MarketplaceClient,
	logger zerolog.Logger,
	concurrency int,
) *SyncService {
	if concurrency <= 0 {
		concurrency = defaultSyncConcurrency
	}
	return &SyncService{
		configs:     configs,
		stores:      stores,
		client:      client,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// SyncProducts fetches and normalizes the product catalog of every
// connected store of the seller, optionally narrowed to one store.
func (s *SyncService) SyncProducts(ctx context.Context, sellerID, storeID string) ([]domain.Product, error) {
	cfg, targets, err := s.resolveTargets(ctx, sellerID, storeID)
	if err != nil {
		return nil, err
	}
	if cfg == nil || len(targets) == 0 {
		return []domain.Product{}, nil
	}

	var (
		mu  sync.Mutex
		out []domain.Product
	)
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, store := range targets {
		g.Go(func() error {
			products, err := s.client.SearchProducts(ctx, cfg, store, syncPageSize)
			if err != nil {
				s.skipStore(sellerID, store, "products", err)
				return nil
			}
			if len(products) == 0 {
				return nil
			}
			s.markSynced(ctx, store)
			mu.Lock()
			out = append(out, products...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// A cancelled request yields no response, not a partial one.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.SyncedRecords.WithLabelValues("products").Add(float64(len(out)))
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

// SyncOrders fetches and normalizes the orders of every connected store of
// the seller, optionally narrowed to one store.
func (s *SyncService) SyncOrders(ctx context.Context, sellerID, storeID string) ([]domain.Order, error) {
	cfg, targets, err := s.resolveTargets(ctx, sellerID, storeID)
	if err != nil {
		return nil, err
	}
	if cfg == nil || len(targets) == 0 {
		return []domain.Order{}, nil
	}

	var (
		mu  sync.Mutex
		out []domain.Order
	)
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, store := range targets {
		g.Go(func() error {
			orders, err := s.client.SearchOrders(ctx, cfg, store, syncPageSize)
			if err != nil {
				s.skipStore(sellerID, store, "orders", err)
				return nil
			}
			if len(orders) == 0 {
				return nil
			}
			s.markSynced(ctx, store)
			mu.Lock()
			out = append(out, orders...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.SyncedRecords.WithLabelValues("orders").Add(float64(len(out)))
	if out == nil {
		out = []domain.Order{}
	}
	return out, nil
}

// ListStores returns every store connection of the seller for the
// marketplace, connected or not.
func (s *SyncService) ListStores(ctx context.Context, sellerID string) ([]*domain.StoreConnection, error) {
	stores, err := s.stores.ListBySellerAndMarketplace(ctx, sellerID, domain.MarketplaceTikTok, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list store connections: %w", err)
	}
	return stores, nil
}

// resolveTargets loads the seller's config and the usable stores for this
// pass. A missing config is not an error: the seller simply has nothing
// synced yet.
func (s *SyncService) resolveTargets(ctx context.Context, sellerID, storeID string) (*domain.MarketplaceConfig, []*domain.StoreConnection, error) {
	cfg, err := s.configs.GetBySellerAndMarketplace(ctx, sellerID, domain.MarketplaceTikTok)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}
	if cfg == nil {
		return nil, nil, nil
	}

	stores, err := s.stores.ListBySellerAndMarketplace(ctx, sellerID, domain.MarketplaceTikTok, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list store connections: %w", err)
	}

	targets := make([]*domain.StoreConnection, 0, len(stores))
	for _, store := range stores {
		if !store.Usable() {
			continue
		}
		if storeID != "" && store.ID != storeID {
			continue
		}
		targets = append(targets, store)
	}
	return cfg, targets, nil
}

func (s *SyncService) skipStore(sellerID string, store *domain.StoreConnection, entity string, err error) {
	s.logger.Warn().
		Err(err).
		Str("seller_id", sellerID).
		Str("store_id", store.ID).
		Str("shop_id", store.ShopID).
		Str("entity", entity).
		Msg("Store skipped during sync")
}

func (s *SyncService) markSynced(ctx context.Context, store *domain.StoreConnection) {
	if err := s.stores.UpdateLastSync(ctx, store.ID, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("store_id", store.ID).Msg("Failed to update last sync time")
	}
}
