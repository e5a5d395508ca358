package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storelink-marketplace-layer/internal/domain"
	"storelink-marketplace-layer/internal/metrics"
	"storelink-marketplace-layer/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Version pins the open API version advertised on every signed call.
const Version = "202309"

const (
	tokenPath         = "/api/v2/token/get"
	productSearchPath = "/product/" + Version + "/products/search"
	orderSearchPath   = "/order/" + Version + "/orders/search"

	defaultPageSize = 50
	defaultTimeout  = 15 * time.Second
)

// Client talks to the TikTok Shop open API on behalf of connected stores.
// The token exchange goes to the auth host; signed API calls go to the
// per-seller API base URL from the marketplace config.
type Client struct {
	authHost   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClient creates a marketplace client adapter.
func NewClient(authHost string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		authHost:   strings.TrimRight(authHost, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second/10), 10),
		logger:     logger,
		now:        time.Now,
	}
}

// ExchangeToken performs the authorization-code exchange. This is a
// bootstrap call: it is not signed and carries no access token.
func (c *Client) ExchangeToken(ctx context.Context, cfg *domain.MarketplaceConfig, authCode string) (*ports.TokenGrant, error) {
	q := url.Values{}
	q.Set("app_key", cfg.AppKey)
	q.Set("app_secret", cfg.AppSecret)
	q.Set("auth_code", authCode)
	q.Set("grant_type", "authorized_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.authHost+tokenPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if env.Code != 0 {
		return nil, &domain.APIError{Code: env.Code, Message: env.Message, RequestID: env.RequestID}
	}

	var data tokenData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode token data: %w", err)
	}
	if data.AccessToken == "" || data.OpenID == "" {
		return nil, fmt.Errorf("token response missing access token or shop identifier")
	}

	return &ports.TokenGrant{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresIn:    data.AccessTokenExpireIn,
		ShopID:       data.OpenID,
		ShopName:     data.SellerName,
	}, nil
}

// Call issues one signed, authenticated request for one store and decodes
// the response envelope. A nonzero envelope code or a transport failure is
// returned as an error; callers running a batch treat it as "no data for
// this store".
func (c *Client) Call(ctx context.Context, cfg *domain.MarketplaceConfig, store *domain.StoreConnection, apiPath string, body any) (json.RawMessage, error) {
	if !store.Usable() {
		return nil, fmt.Errorf("store %s is not connected", store.ID)
	}

	params := map[string]string{
		"app_key":     cfg.AppKey,
		"timestamp":   strconv.FormatInt(c.now().Unix(), 10),
		"shop_cipher": store.ShopID,
		"version":     Version,
	}
	params["sign"] = Sign(cfg.AppSecret, apiPath, params)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	endpoint := strings.TrimRight(cfg.APIBaseURL, "/") + apiPath + "?" + q.Encode()

	start := time.Now()
	env, err := c.post(ctx, endpoint, store.AccessToken, payload)
	metrics.MarketplaceCallDuration.WithLabelValues(apiPath).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MarketplaceCalls.WithLabelValues(apiPath, "transport_error").Inc()
		return nil, err
	}
	if env.Code != 0 {
		metrics.MarketplaceCalls.WithLabelValues(apiPath, "api_error").Inc()
		c.logger.Warn().
			Int("code", env.Code).
			Str("message", env.Message).
			Str("request_id", env.RequestID).
			Str("path", apiPath).
			Str("shop_id", store.ShopID).
			Msg("Marketplace API returned an error")
		return nil, &domain.APIError{Code: env.Code, Message: env.Message, RequestID: env.RequestID}
	}

	metrics.MarketplaceCalls.WithLabelValues(apiPath, "ok").Inc()
	return env.Data, nil
}

// post sends the request with the access token in the header, never in the
// query string. Transport-level failures get a single retry; envelope
// errors do not.
func (c *Client) post(ctx context.Context, endpoint, accessToken string, payload []byte) (*Envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-tts-access-token", accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("marketplace request failed: %w", err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}

		var env Envelope
		err = json.NewDecoder(resp.Body).Decode(&env)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode marketplace response: %w", err)
			continue
		}
		return &env, nil
	}
	return nil, lastErr
}

// SearchProducts fetches one page of the store's products and normalizes it.
func (c *Client) SearchProducts(ctx context.Context, cfg *domain.MarketplaceConfig, store *domain.StoreConnection, pageSize int) ([]domain.Product, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	data, err := c.Call(ctx, cfg, store, productSearchPath, productSearchRequest{PageSize: pageSize})
	if err != nil {
		return nil, err
	}

	var payload productSearchData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode product search data: %w", err)
	}
	return NormalizeProducts(store.ID, payload.Products), nil
}

// SearchOrders fetches one page of the store's orders, newest first, and
// normalizes it.
func (c *Client) SearchOrders(ctx context.Context, cfg *domain.MarketplaceConfig, store *domain.StoreConnection, pageSize int) ([]domain.Order, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	body := orderSearchRequest{PageSize: pageSize, SortField: "create_time", SortOrder: "DESC"}
	data, err := c.Call(ctx, cfg, store, orderSearchPath, body)
	if err != nil {
		return nil, err
	}

	var payload orderSearchData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode order search data: %w", err)
	}
	return NormalizeOrders(store.SellerID, store.ID, payload.Orders), nil
}
