package repository

import (
	"context"
	"fmt"
	"time"

	"storelink-marketplace-layer/internal/domain"
	"storelink-marketplace-layer/internal/infrastructure/repository/entity"
	"storelink-marketplace-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfigRepository implements ConfigRepository using MongoDB.
type MongoConfigRepository struct {
	collection *mongo.Collection
}

// NewMongoConfigRepository creates a new MongoDB config repository.
func NewMongoConfigRepository(db *mongo.Database) ports.ConfigRepository {
	return &MongoConfigRepository{
		collection: db.Collection("marketplace_configs"),
	}
}

// GetBySellerAndMarketplace retrieves a seller's credentials for one
// marketplace. Returns (nil, nil) when none are on file.
func (r *MongoConfigRepository) GetBySellerAndMarketplace(ctx context.Context, sellerID, marketplace string) (*domain.MarketplaceConfig, error) {
	var doc entity.MongoMarketplaceConfigDoc
	filter := bson.M{"sellerId": sellerID, "marketplace": marketplace}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get marketplace config: %w", err)
	}

	return doc.ToDomain(), nil
}

// Upsert saves or replaces a seller's credentials, keyed by the natural key
// (sellerId, marketplace).
func (r *MongoConfigRepository) Upsert(ctx context.Context, cfg *domain.MarketplaceConfig) error {
	doc := entity.MongoMarketplaceConfigDocFromDomain(cfg)
	doc.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"sellerId": cfg.SellerID, "marketplace": cfg.Marketplace}
	update := bson.M{"$set": doc}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save marketplace config: %w", err)
	}
	return nil
}
