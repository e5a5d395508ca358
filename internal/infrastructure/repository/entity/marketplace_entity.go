package entity

import (
	"time"

	"storelink-marketplace-layer/internal/domain"
)

// MongoMarketplaceConfigDoc represents a seller's marketplace credentials in
// MongoDB.
type MongoMarketplaceConfigDoc struct {
	SellerID      string    `bson:"sellerId"`
	Marketplace   string    `bson:"marketplace"`
	AppKey        string    `bson:"appKey"`
	AppSecret     string    `bson:"appSecret"`
	ServiceID     string    `bson:"serviceId"`
	WebhookSecret string    `bson:"webhookSecret"`
	APIBaseURL    string    `bson:"apiBaseUrl"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *MongoMarketplaceConfigDoc) ToDomain() *domain.MarketplaceConfig {
	return &domain.MarketplaceConfig{
		SellerID:      d.SellerID,
		Marketplace:   d.Marketplace,
		AppKey:        d.AppKey,
		AppSecret:     d.AppSecret,
		ServiceID:     d.ServiceID,
		WebhookSecret: d.WebhookSecret,
		APIBaseURL:    d.APIBaseURL,
	}
}

// MongoMarketplaceConfigDocFromDomain converts a domain entity to a MongoDB
// document.
func MongoMarketplaceConfigDocFromDomain(cfg *domain.MarketplaceConfig) *MongoMarketplaceConfigDoc {
	return &MongoMarketplaceConfigDoc{
		SellerID:      cfg.SellerID,
		Marketplace:   cfg.Marketplace,
		AppKey:        cfg.AppKey,
		AppSecret:     cfg.AppSecret,
		ServiceID:     cfg.ServiceID,
		WebhookSecret: cfg.WebhookSecret,
		APIBaseURL:    cfg.APIBaseURL,
	}
}

// MongoStoreConnectionDoc represents one seller-to-shop connection in
// MongoDB. The _id is an opaque string minted on first insert.
type MongoStoreConnectionDoc struct {
	ID           string    `bson:"_id,omitempty"`
	SellerID     string    `bson:"sellerId"`
	Marketplace  string    `bson:"marketplace"`
	StoreName    string    `bson:"storeName"`
	AccessToken  string    `bson:"accessToken"`
	RefreshToken string    `bson:"refreshToken"`
	TokenExpiry  time.Time `bson:"tokenExpiry"`
	ShopID       string    `bson:"shopId"`
	Connected    bool      `bson:"connected"`
	LastSyncAt   time.Time `bson:"lastSyncAt"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *MongoStoreConnectionDoc) ToDomain() *domain.StoreConnection {
	return &domain.StoreConnection{
		ID:           d.ID,
		SellerID:     d.SellerID,
		Marketplace:  d.Marketplace,
		StoreName:    d.StoreName,
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		TokenExpiry:  d.TokenExpiry,
		ShopID:       d.ShopID,
		Connected:    d.Connected,
		LastSyncAt:   d.LastSyncAt,
	}
}
