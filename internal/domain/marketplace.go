package domain

import "time"

// Marketplace identifiers. Everything in the connector is keyed by
// (seller, marketplace) so additional marketplaces slot in beside TikTok.
const MarketplaceTikTok = "tiktok"

// MarketplaceConfig holds the app-level credentials a seller registered to
// talk to one marketplace. Natural key: (SellerID, Marketplace).
// The connector treats it as read-only; it is created and updated through
// the settings surface.
type MarketplaceConfig struct {
	SellerID      string `json:"seller_id"`
	Marketplace   string `json:"marketplace"`
	AppKey        string `json:"app_key"`
	AppSecret     string `json:"-"`
	ServiceID     string `json:"service_id"`
	WebhookSecret string `json:"-"`
	APIBaseURL    string `json:"api_base_url"`
}

// StoreConnection is one authorized link between a seller and one shop on
// one marketplace, carrying the OAuth tokens for that shop.
// Natural key once connected: (SellerID, ShopID).
type StoreConnection struct {
	ID           string    `json:"id"`
	SellerID     string    `json:"seller_id"`
	Marketplace  string    `json:"marketplace"`
	StoreName    string    `json:"store_name"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"token_expiry"`
	ShopID       string    `json:"shop_id"`
	Connected    bool      `json:"connected"`
	LastSyncAt   time.Time `json:"last_sync_at"`
}

// Usable reports whether the connection may be used for authenticated
// marketplace API calls.
func (c *StoreConnection) Usable() bool {
	return c.Connected && c.AccessToken != ""
}
