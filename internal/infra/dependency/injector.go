// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/btc-tracker/backend/config"
	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/application/usecase/importer"
	"github.com/btc-tracker/backend/internal/application/usecase/lnmarketsconfig"
	"github.com/btc-tracker/backend/internal/application/usecase/metrics"
	"github.com/btc-tracker/backend/internal/application/usecase/report"
	"github.com/btc-tracker/backend/internal/domain/entity"
	"github.com/btc-tracker/backend/internal/domain/valueobject"
	"github.com/btc-tracker/backend/internal/infra/cache"
	"github.com/btc-tracker/backend/internal/infra/server/router"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/middleware"
	"github.com/btc-tracker/backend/internal/integration/events"
	"github.com/btc-tracker/backend/internal/integration/lnmarkets"
	"github.com/btc-tracker/backend/internal/integration/lock"
	"github.com/btc-tracker/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config         *config.Config
	DB             *gorm.DB
	Redis          *redis.Client
	Origin         string
	Store          *report.Store
	Bus            *events.Bus
	MetricsCache   *metrics.Cache
	ImportUseCase  *importer.ImportUseCase
	MetricsUseCase *metrics.GetMetricsUseCase
	ConfigRepo     adapter.LNMarketsConfigRepository
	Tracker        *importer.Tracker
	Router         *router.Router
}

// NewInjector creates a new dependency injector with all dependencies wired.
// fetcher overrides the LN Markets client when non-nil. redisClient may be
// nil, in which case locks and events stay process-local.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, fetcher adapter.PageFetcher) *Injector {
	origin := uuid.New().String()

	// Create repositories
	storageRepo := persistence.NewStorageRepository(db)
	configRepo := persistence.NewLNMarketsConfigRepository(db)

	// Create event fan-out; the metrics cache drops everything on any mutation
	metricsCache := metrics.NewCache(cfg.Metrics.CacheCapacity, cfg.Metrics.CacheTTL)
	bus := events.NewBus()
	bus.Subscribe(metricsCache.OnStoreEvent)

	publishers := events.Multi{bus}
	var importLock adapter.ImportLock
	if redisClient != nil {
		publishers = append(publishers, events.NewRedisPublisher(redisClient, cfg.Redis.EventChannel, origin))
		importLock = lock.NewRedisLock(redisClient, cfg.Import.LockTTL)
	} else {
		importLock = lock.NewMemoryLock()
	}

	// Create the report store
	store := report.NewStore(storageRepo, publishers, cfg.Store.CollectionKey, report.WithLegacyKey(cfg.Store.LegacyKey))

	// Create import use cases
	if fetcher == nil {
		fetcher = lnmarkets.NewClient(configRepo, cfg.LNMarkets.BaseURL, cfg.LNMarkets.TestnetBaseURL, cfg.LNMarkets.Timeout)
	}
	fetchController := importer.NewController(fetcher, PaginationPolicy(cfg.Import), RetryPolicy(cfg.Import))
	importUseCase := importer.NewImportUseCase(store, fetchController, importLock)
	tracker := importer.NewTracker(importer.DefaultFinishedJobs)

	// Create metrics use cases
	getMetricsUseCase := metrics.NewGetMetricsUseCase(store, metricsCache)

	// Create lnmarkets config use cases
	listConfigsUseCase := lnmarketsconfig.NewListConfigsUseCase(configRepo)
	createConfigUseCase := lnmarketsconfig.NewCreateConfigUseCase(configRepo)
	deleteConfigUseCase := lnmarketsconfig.NewDeleteConfigUseCase(configRepo)

	// Create controllers
	var redisHealth func() bool
	if redisClient != nil {
		redisHealth = func() bool { return cache.HealthCheck(redisClient) }
	}
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, redisHealth)

	reportController := controller.NewReportController(store)
	recordController := controller.NewRecordController(store)
	importController := controller.NewImportController(importUseCase, tracker)
	metricsController := controller.NewMetricsController(getMetricsUseCase)
	lnMarketsConfigController := controller.NewLNMarketsConfigController(
		listConfigsUseCase,
		createConfigUseCase,
		deleteConfigUseCase,
	)

	// Create middleware
	// Use higher rate limits for E2E/test environments to prevent flaky tests
	var importRateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		importRateLimiter = middleware.NewRateLimiterWithConfig(1000, 1*time.Minute)
	} else {
		importRateLimiter = middleware.NewRateLimiter()
	}

	// Create router
	r := router.NewRouter(
		healthController,
		reportController,
		recordController,
		importController,
		metricsController,
		lnMarketsConfigController,
		importRateLimiter,
		cfg.Server.DefaultUserID,
	)

	return &Injector{
		Config:         cfg,
		DB:             db,
		Redis:          redisClient,
		Origin:         origin,
		Store:          store,
		Bus:            bus,
		MetricsCache:   metricsCache,
		ImportUseCase:  importUseCase,
		MetricsUseCase: getMetricsUseCase,
		ConfigRepo:     configRepo,
		Tracker:        tracker,
		Router:         r,
	}
}

// ListenRemoteEvents reloads the store whenever another process sharing the
// same Redis mutates the collection. It blocks until ctx is done and is a
// no-op without Redis.
func (i *Injector) ListenRemoteEvents(ctx context.Context) {
	if i.Redis == nil {
		return
	}
	err := events.Listen(ctx, i.Redis, i.Config.Redis.EventChannel, i.Origin, func(ctx context.Context, event entity.StoreEvent) {
		if err := i.Store.Load(ctx); err != nil {
			slog.Error("Failed to reload report store after remote event", "event", event.Name, "error", err)
			return
		}
		i.MetricsCache.OnStoreEvent(ctx, event)
	})
	if err != nil {
		slog.Error("Remote event listener stopped", "error", err)
	}
}

// PaginationPolicy builds the fetch controller policy from configuration.
func PaginationPolicy(cfg config.ImportConfig) valueobject.PaginationPolicy {
	return valueobject.PaginationPolicy{
		PageSize:             cfg.PageSize,
		MaxEmptyPages:        cfg.MaxEmptyPages,
		MaxUnproductivePages: cfg.MaxUnproductivePages,
		MaxRecords:           cfg.MaxRecords,
		MaxOffset:            cfg.MaxOffset,
		PageDelay:            cfg.PageDelay,
	}
}

// RetryPolicy builds the per-page retry policy from configuration.
func RetryPolicy(cfg config.ImportConfig) valueobject.RetryPolicy {
	return valueobject.RetryPolicy{
		MaxAttempts: cfg.RetryAttempts,
		Backoff:     cfg.RetryDelay,
	}
}
