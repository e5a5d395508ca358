package main

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"time"

	"storelink-marketplace-layer/internal/application"
	"storelink-marketplace-layer/internal/domain"
	"storelink-marketplace-layer/internal/infrastructure/repository"
	"storelink-marketplace-layer/internal/infrastructure/statestore"
	"storelink-marketplace-layer/internal/infrastructure/tiktok"
	"storelink-marketplace-layer/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// config collects all process configuration once at startup; nothing below
// main reads the environment.
type config struct {
	Port            string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	AuthHost        string
	HTTPTimeout     time.Duration
	SyncConcurrency int
}

func loadConfig() config {
	cfg := config{
		Port:            getenv("PORT", "8080"),
		MongoURI:        getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getenv("MONGODB_DATABASE", "marketplace_layer"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		AuthHost:        getenv("TIKTOK_AUTH_HOST", "https://auth.tiktok-shops.com"),
		HTTPTimeout:     15 * time.Second,
		SyncConcurrency: 4,
	}
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("SYNC_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SyncConcurrency = n
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("No .env file found")
	}

	cfg := loadConfig()

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDatabase)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	metrics.Register()

	// Repositories and adapters
	configRepo := repository.NewMongoConfigRepository(db)
	storeRepo := repository.NewMongoStoreRepository(db)
	states := statestore.New(redisClient, logger)
	marketplaceClient := tiktok.NewClient(cfg.AuthHost, cfg.HTTPTimeout, logger)

	// Application services
	oauthService := application.NewOAuthService(configRepo, storeRepo, states, marketplaceClient, logger)
	syncService := application.NewSyncService(configRepo, storeRepo, marketplaceClient, logger, cfg.SyncConcurrency)
	settingsService := application.NewSettingsService(configRepo, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/auth/tiktok/callback", oauthCallbackHandler(oauthService, logger))

	// Seller-scoped routes
	r.Group(func(r chi.Router) {
		r.Use(sellerIDMiddleware())
		r.Get("/auth/tiktok", oauthInitHandler(oauthService, logger))
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/stores", listStoresHandler(syncService, logger))
			r.Get("/products/sync", syncProductsHandler(syncService, logger))
			r.Get("/orders/sync", syncOrdersHandler(syncService, logger))
			r.Get("/settings/marketplace", getSettingsHandler(settingsService, logger))
			r.Put("/settings/marketplace", saveSettingsHandler(settingsService, logger))
		})
	})

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// sellerIDMiddleware extracts the authenticated seller from the X-Seller-ID
// header. Identity resolution happens upstream; this layer only requires
// that some opaque seller identifier is present.
func sellerIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sellerID := r.Header.Get("X-Seller-ID")
			if sellerID == "" {
				http.Error(w, "X-Seller-ID header is required", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r.WithContext(domain.WithSellerID(r.Context(), sellerID)))
		})
	}
}

// oauthInitHandler redirects the seller's browser to the marketplace
// authorization page.
func oauthInitHandler(oauthService *application.OAuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sellerID := domain.SellerIDFromContext(ctx)

		authURL, err := oauthService.AuthorizeURL(ctx, sellerID)
		if errors.Is(err, domain.ErrConfigMissing) {
			http.Error(w, "configure marketplace credentials first", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error().Err(err).Str("seller_id", sellerID).Msg("Failed to build authorization URL")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

var completionPage = template.Must(template.New("done").Parse(`<!DOCTYPE html>
<html>
<head><title>Store connected</title></head>
<body>
<p><strong>{{.StoreName}}</strong> is now connected. You can close this window.</p>
</body>
</html>
`))

// oauthCallbackHandler handles the marketplace redirect. The state token is
// decoded and verified before any network call; the token exchange itself
// fails closed.
func oauthCallbackHandler(oauthService *application.OAuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" {
			http.Error(w, "code parameter is required", http.StatusBadRequest)
			return
		}

		sellerID, err := application.DecodeState(state)
		if err != nil {
			http.Error(w, "invalid state", http.StatusBadRequest)
			return
		}

		if err := oauthService.VerifyState(ctx, state); err != nil {
			if errors.Is(err, domain.ErrInvalidState) {
				http.Error(w, "unknown or expired state", http.StatusForbidden)
				return
			}
			logger.Error().Err(err).Msg("Failed to verify oauth state")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		conn, err := oauthService.Exchange(ctx, sellerID, code)
		if errors.Is(err, domain.ErrConfigMissing) {
			http.Error(w, "configure marketplace credentials first", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error().Err(err).Str("seller_id", sellerID).Msg("Failed to complete store connection")
			http.Error(w, "failed to complete store connection", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := completionPage.Execute(w, map[string]string{"StoreName": conn.StoreName}); err != nil {
			logger.Error().Err(err).Msg("Failed to render completion page")
		}
	}
}

func listStoresHandler(syncService *application.SyncService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sellerID := domain.SellerIDFromContext(ctx)

		stores, err := syncService.ListStores(ctx, sellerID)
		if err != nil {
			logger.Error().Err(err).Str("seller_id", sellerID).Msg("Failed to list stores")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if stores == nil {
			stores = []*domain.StoreConnection{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": stores, "count": len(stores)})
	}
}

// Sync endpoints never surface a hard error because a single store's
// credentials expired; a failed store is simply absent from the result.
func syncProductsHandler(syncService *application.SyncService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sellerID := domain.SellerIDFromContext(ctx)
		storeID := r.URL.Query().Get("store_id")

		products, err := syncService.SyncProducts(ctx, sellerID, storeID)
		if err != nil {
			logger.Error().Err(err).Str("seller_id", sellerID).Msg("Product sync failed")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": products, "count": len(products)})
	}
}

func syncOrdersHandler(syncService *application.SyncService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sellerID := domain.SellerIDFromContext(ctx)
		storeID := r.URL.Query().Get("store_id")

		orders, err := syncService.SyncOrders(ctx, sellerID, storeID)
		if err != nil {
			logger.Error().Err(err).Str("seller_id", sellerID).Msg("Order sync failed")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": orders, "count": len(orders)})
	}
}

func getSettingsHandler(settingsService *application.SettingsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sellerID := domain.SellerIDFromContext(ctx)

		cfg, err := settingsService.GetConfig(ctx, sellerID)
		if err != nil {
			logger.Error().Err(err).Str("seller_id", sellerID).Msg("Failed to load settings")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if cfg == nil {
			http.Error(w, "marketplace credentials not configured", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

func saveSettingsHandler(settingsService *application.SettingsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sellerID := domain.SellerIDFromContext(ctx)

		var input application.SaveMarketplaceConfigInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		cfg, err := settingsService.SaveConfig(ctx, sellerID, input)
		if err != nil {
			logger.Error().Err(err).Str("seller_id", sellerID).Msg("Failed to save settings")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
