package application

import (
	"context"
	"fmt"

	"storelink-marketplace-layer/internal/domain"
	"storelink-marketplace-layer/internal/ports"

	"github.com/rs/zerolog"
)

const defaultAPIBaseURL = "https://open-api.tiktokglobalshop.com"

// SettingsService is the thin save/read surface for per-seller marketplace
// credentials. The connector itself only ever reads them.
type SettingsService struct {
	configs ports.ConfigRepository
	logger  zerolog.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configs ports.ConfigRepository, logger zerolog.Logger) *SettingsService {
	return &SettingsService{configs: configs, logger: logger}
}

// SaveMarketplaceConfigInput carries the credentials a seller registers for
// the marketplace.
type SaveMarketplaceConfigInput struct {
	AppKey        string `json:"app_key"`
	AppSecret     string `json:"app_secret"`
	ServiceID     string `json:"service_id"`
	WebhookSecret string `json:"webhook_secret"`
	APIBaseURL    string `json:"api_base_url"`
}

// SaveConfig stores or replaces the seller's marketplace credentials.
func (s *SettingsService) SaveConfig(ctx context.Context, sellerID string, input SaveMarketplaceConfigInput) (*domain.MarketplaceConfig, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("seller id is required")
	}
	if input.AppKey == "" || input.AppSecret == "" {
		return nil, fmt.Errorf("app key and app secret are required")
	}
	if input.APIBaseURL == "" {
		input.APIBaseURL = defaultAPIBaseURL
	}

	cfg := &domain.MarketplaceConfig{
		SellerID:      sellerID,
		Marketplace:   domain.MarketplaceTikTok,
		AppKey:        input.AppKey,
		AppSecret:     input.AppSecret,
		ServiceID:     input.ServiceID,
		WebhookSecret: input.WebhookSecret,
		APIBaseURL:    input.APIBaseURL,
	}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save marketplace config: %w", err)
	}

	s.logger.Info().
		Str("seller_id", sellerID).
		Str("marketplace", cfg.Marketplace).
		Msg("Marketplace credentials saved")

	return cfg, nil
}

// GetConfig returns the seller's stored credentials, or (nil, nil) when
// none are on file.
func (s *SettingsService) GetConfig(ctx context.Context, sellerID string) (*domain.MarketplaceConfig, error) {
	cfg, err := s.configs.GetBySellerAndMarketplace(ctx, sellerID, domain.MarketplaceTikTok)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}
	return cfg, nil
}
