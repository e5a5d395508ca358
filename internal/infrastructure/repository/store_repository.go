package repository

import (
	"context"
	"fmt"
	"time"

	"storelink-marketplace-layer/internal/domain"
	"storelink-marketplace-layer/internal/infrastructure/repository/entity"
	"storelink-marketplace-layer/internal/ports"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStoreRepository implements StoreRepository using MongoDB.
type MongoStoreRepository struct {
	collection *mongo.Collection
}

// NewMongoStoreRepository creates a new MongoDB store-connection repository.
func NewMongoStoreRepository(db *mongo.Database) ports.StoreRepository {
	return &MongoStoreRepository{
		collection: db.Collection("store_connections"),
	}
}

// ListBySellerAndMarketplace retrieves the seller's store connections for
// one marketplace, optionally restricted to connected stores.
func (r *MongoStoreRepository) ListBySellerAndMarketplace(ctx context.Context, sellerID, marketplace string, onlyConnected bool) ([]*domain.StoreConnection, error) {
	filter := bson.M{"sellerId": sellerID, "marketplace": marketplace}
	if onlyConnected {
		filter["connected"] = true
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list store connections: %w", err)
	}
	defer cursor.Close(ctx)

	var stores []*domain.StoreConnection
	for cursor.Next(ctx) {
		var doc entity.MongoStoreConnectionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode store connection: %w", err)
		}
		stores = append(stores, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return stores, nil
}

// GetByID retrieves one store connection. Returns (nil, nil) when absent.
func (r *MongoStoreRepository) GetByID(ctx context.Context, id string) (*domain.StoreConnection, error) {
	var doc entity.MongoStoreConnectionDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store connection: %w", err)
	}
	return doc.ToDomain(), nil
}

// Upsert saves a store connection keyed by (sellerId, shopId): an existing
// row gets its token fields, name, flag, and sync time replaced; a new row
// is inserted with a minted id. The persisted row is returned.
func (r *MongoStoreRepository) Upsert(ctx context.Context, conn *domain.StoreConnection) (*domain.StoreConnection, error) {
	now := time.Now()
	filter := bson.M{"sellerId": conn.SellerID, "shopId": conn.ShopID}
	update := bson.M{
		"$set": bson.M{
			"storeName":    conn.StoreName,
			"accessToken":  conn.AccessToken,
			"refreshToken": conn.RefreshToken,
			"tokenExpiry":  conn.TokenExpiry,
			"connected":    conn.Connected,
			"lastSyncAt":   conn.LastSyncAt,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"_id":         uuid.NewString(),
			"sellerId":    conn.SellerID,
			"marketplace": conn.Marketplace,
			"shopId":      conn.ShopID,
			"createdAt":   now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return nil, fmt.Errorf("failed to save store connection: %w", err)
	}

	var doc entity.MongoStoreConnectionDoc
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to reload store connection: %w", err)
	}
	return doc.ToDomain(), nil
}

// UpdateTokens replaces the token fields of one connection and marks it
// connected, keyed by (sellerId, shopId).
func (r *MongoStoreRepository) UpdateTokens(ctx context.Context, sellerID, shopID, accessToken, refreshToken string, expiry time.Time) error {
	filter := bson.M{"sellerId": sellerID, "shopId": shopID}
	update := bson.M{"$set": bson.M{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"tokenExpiry":  expiry,
		"connected":    true,
		"updatedAt":    time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("store connection not found for seller %s and shop %s", sellerID, shopID)
	}
	return nil
}

// UpdateLastSync refreshes the connection's last successful sync time.
func (r *MongoStoreRepository) UpdateLastSync(ctx context.Context, id string, at time.Time) error {
	update := bson.M{"$set": bson.M{"lastSyncAt": at, "updatedAt": time.Now()}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to update last sync time: %w", err)
	}
	return nil
}
