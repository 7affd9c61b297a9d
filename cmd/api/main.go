package main

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"commerce-sync-layer/internal/application"
	"commerce-sync-layer/internal/config"
	"commerce-sync-layer/internal/domain"
	"commerce-sync-layer/internal/infrastructure/encryption"
	"commerce-sync-layer/internal/infrastructure/metrics"
	tenantmiddleware "commerce-sync-layer/internal/infrastructure/middleware"
	"commerce-sync-layer/internal/infrastructure/repository"
	"commerce-sync-layer/internal/infrastructure/shopify"
	"commerce-sync-layer/internal/infrastructure/state"
	"commerce-sync-layer/internal/infrastructure/vault"
	"commerce-sync-layer/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureStoreIndexes(context.Background(), db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure store indexes")
	}
	if err := repository.EnsureResourceIndexes(context.Background(), db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure resource indexes")
	}

	// Initialize infrastructure (implementations)
	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	storeRepo := repository.NewMongoStoreRepository(db)
	resourceRepo := repository.NewMongoResourceRepository(db)

	// OAuth state: Redis when configured, in-process fallback otherwise.
	var stateStore ports.OAuthStateStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		stateStore = state.NewRedisStore(rdb, logger)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, using in-memory OAuth state store")
		stateStore = state.NewMemoryStore()
	}

	credentials := vault.NewClient(db, encryptionService, logger)
	platformClient := shopify.NewClientWithOptions(
		credentials,
		logger,
		shopify.NewRateLimiter(),
		&http.Client{Timeout: cfg.HTTPTimeout},
	)

	// Metrics registry with the standard process and Go collectors.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	syncMetrics := metrics.New(registry)

	// Initialize application services
	syncService := application.NewSyncService(
		storeRepo,
		resourceRepo,
		platformClient,
		encryptionService,
		syncMetrics,
		logger,
		cfg.SyncPageSize,
	)

	connectService := application.NewConnectService(
		stateStore,
		platformClient,
		storeRepo,
		encryptionService,
		syncService,
		logger,
		cfg.AppURL,
		cfg.OAuthScopes,
	)

	storeService := application.NewStoreService(storeRepo, resourceRepo, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Tenant ID middleware skips public routes (/health, /metrics, /swagger/*)
	// and the OAuth callback, which carries its tenant inside the state token.
	r.Use(tenantmiddleware.TenantID(logger))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Connection flow
	r.Post("/connect", connectHandler(connectService, logger))
	r.Get("/auth/callback", callbackHandler(connectService, logger))

	// Store management
	r.Post("/sync", syncHandler(syncService, logger))
	r.Get("/stores", listStoresHandler(storeService, logger))
	r.Get("/stores/{storeID}", getStoreHandler(storeService, logger))
	r.Delete("/stores/{storeID}", deleteStoreHandler(storeService, logger))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

type connectRequest struct {
	StoreDomain string `json:"storeDomain"`
	TenantID    string `json:"tenantId"`
}

type connectResponse struct {
	AuthURL string `json:"authUrl"`
}

type syncRequest struct {
	StoreID string `json:"storeId"`
}

type syncResponse struct {
	Success bool             `json:"success"`
	Stats   domain.SyncStats `json:"stats"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// connectHandler starts the OAuth flow and returns the consent URL.
func connectHandler(connectService *application.ConnectService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req connectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.StoreDomain == "" {
			writeError(w, http.StatusBadRequest, "storeDomain is required")
			return
		}

		tenantID := domain.TenantIDFromContext(ctx)
		if tenantID == "" {
			tenantID = req.TenantID
		}
		if tenantID == "" {
			writeError(w, http.StatusBadRequest, "tenant ID is required")
			return
		}
		authURL, err := connectService.BeginConnect(ctx, tenantID, req.StoreDomain)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidDomain) {
				writeError(w, http.StatusBadRequest, "invalid store domain")
				return
			}
			logger.Error().Err(err).Msg("Failed to initiate connection")
			writeError(w, http.StatusInternalServerError, "failed to initiate connection")
			return
		}

		writeJSON(w, http.StatusOK, connectResponse{AuthURL: authURL})
	}
}

// callbackPage notifies the opener window and closes the popup. The callback
// is loaded top-level by the platform's redirect, so it must render HTML in
// every case, never JSON.
var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><title>Store Connection</title></head>
<body>
<p>{{.Message}}</p>
<script>
if (window.opener) {
	window.opener.postMessage({type: "store-connected", ok: {{.Success}}, shop: "{{.Shop}}"}, "*");
	window.close();
}
</script>
</body>
</html>`))

type callbackPageData struct {
	Success bool
	Shop    string
	Message string
}

func renderCallbackPage(w http.ResponseWriter, status int, data callbackPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	callbackPage.Execute(w, data)
}

// callbackHandler completes the OAuth flow.
func callbackHandler(connectService *application.ConnectService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		shop := r.URL.Query().Get("shop")
		code := r.URL.Query().Get("code")
		stateToken := r.URL.Query().Get("state")
		if shop == "" || code == "" || stateToken == "" {
			renderCallbackPage(w, http.StatusBadRequest, callbackPageData{
				Shop:    shop,
				Message: "Missing required parameters.",
			})
			return
		}

		store, err := connectService.CompleteConnect(ctx, shop, code, stateToken)
		if err != nil {
			var exchangeErr *domain.ExchangeError
			switch {
			case errors.Is(err, domain.ErrInvalidState):
				logger.Warn().Str("shop", shop).Msg("Callback with unknown or expired state")
				renderCallbackPage(w, http.StatusUnauthorized, callbackPageData{
					Shop:    shop,
					Message: "This connection request has expired. Please try connecting again.",
				})
			case errors.As(err, &exchangeErr):
				logger.Error().Err(err).Str("shop", shop).Msg("Token exchange failed")
				renderCallbackPage(w, http.StatusBadGateway, callbackPageData{
					Shop:    shop,
					Message: "The store declined the connection. Please try again.",
				})
			default:
				logger.Error().Err(err).Str("shop", shop).Msg("Failed to complete connection")
				renderCallbackPage(w, http.StatusInternalServerError, callbackPageData{
					Shop:    shop,
					Message: "Something went wrong completing the connection.",
				})
			}
			return
		}

		renderCallbackPage(w, http.StatusOK, callbackPageData{
			Success: true,
			Shop:    store.Domain,
			Message: "Store connected. You can close this window.",
		})
	}
}

// syncHandler runs a full resync of an already-connected store.
func syncHandler(syncService *application.SyncService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req syncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.StoreID == "" {
			writeError(w, http.StatusBadRequest, "storeId is required")
			return
		}

		tenantID := domain.TenantIDFromContext(ctx)
		store, err := syncService.Resync(ctx, tenantID, req.StoreID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotConnected):
				writeError(w, http.StatusNotFound, "store is not connected")
			case errors.Is(err, domain.ErrSyncInProgress):
				writeError(w, http.StatusConflict, "a sync is already running for this store")
			default:
				logger.Error().Err(err).Str("storeId", req.StoreID).Msg("Sync failed")
				writeError(w, http.StatusInternalServerError, "sync failed")
			}
			return
		}

		writeJSON(w, http.StatusOK, syncResponse{
			Success: store.SyncStatus == domain.SyncStatusCompleted,
			Stats:   store.SyncSummary,
		})
	}
}

// listStoresHandler returns the tenant's connected stores.
func listStoresHandler(storeService *application.StoreService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tenantID := domain.TenantIDFromContext(ctx)
		stores, err := storeService.List(ctx, tenantID)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to list stores")
			writeError(w, http.StatusInternalServerError, "failed to list stores")
			return
		}
		if stores == nil {
			stores = []*domain.ConnectedStore{}
		}

		writeJSON(w, http.StatusOK, stores)
	}
}

// getStoreHandler returns a single connected store.
func getStoreHandler(storeService *application.StoreService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		storeID := chi.URLParam(r, "storeID")
		tenantID := domain.TenantIDFromContext(ctx)

		store, err := storeService.Get(ctx, tenantID, storeID)
		if err != nil {
			if errors.Is(err, domain.ErrStoreNotFound) {
				writeError(w, http.StatusNotFound, "store not found")
				return
			}
			logger.Error().Err(err).Str("storeId", storeID).Msg("Failed to get store")
			writeError(w, http.StatusInternalServerError, "failed to get store")
			return
		}

		writeJSON(w, http.StatusOK, store)
	}
}

// deleteStoreHandler disconnects a store and purges its synced resources.
func deleteStoreHandler(storeService *application.StoreService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		storeID := chi.URLParam(r, "storeID")
		tenantID := domain.TenantIDFromContext(ctx)

		if err := storeService.Delete(ctx, tenantID, storeID); err != nil {
			if errors.Is(err, domain.ErrStoreNotFound) {
				writeError(w, http.StatusNotFound, "store not found")
				return
			}
			logger.Error().Err(err).Str("storeId", storeID).Msg("Failed to delete store")
			writeError(w, http.StatusInternalServerError, "failed to delete store")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
