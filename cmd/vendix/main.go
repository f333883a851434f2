package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rzyfront/vendix-core/internal/config"
	"github.com/rzyfront/vendix-core/internal/handler"
	"github.com/rzyfront/vendix-core/internal/infra/assets"
	"github.com/rzyfront/vendix-core/internal/infra/cache"
	"github.com/rzyfront/vendix-core/internal/infra/dnscheck"
	"github.com/rzyfront/vendix-core/internal/infra/memstore"
	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/infra/postgres"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/infra/tasks"
	"github.com/rzyfront/vendix-core/internal/port"
	"github.com/rzyfront/vendix-core/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("base_domain", cfg.BaseDomain),
		zap.Bool("use_postgres", cfg.UsePostgres),
		zap.Bool("use_redis", cfg.UseRedis),
		zap.Duration("settings_cache_ttl", cfg.SettingsCacheTTL),
		zap.Duration("dns_timeout", cfg.DNSTimeout),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "vendix-core")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Persistence ---
	var data port.DataStore
	var backend handler.Pinger
	if cfg.UsePostgres && cfg.DatabaseURL != "" {
		pg, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMaxIdle, logger)
		if err != nil {
			logger.Fatal("failed to open postgres", zap.Error(err))
		}
		defer pg.Close()
		logger.Info("using Postgres as data backend")
		data = pg
		backend = pg
	} else {
		logger.Info("using in-memory data backend")
		mem := memstore.New()
		data = mem
		backend = mem
	}

	// --- Settings cache ---
	var settingsCache port.SettingsCache
	if cfg.UseRedis {
		redisCache := cache.NewRedisSettings(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SettingsCacheTTL, logger)
		if err := redisCache.Ping(context.Background()); err != nil {
			logger.Fatal("failed to reach redis", zap.Error(err))
		}
		defer redisCache.Close()
		logger.Info("using Redis settings cache", zap.String("addr", cfg.RedisAddr))
		settingsCache = redisCache
	} else {
		settingsCache = cache.NewMemorySettings(cfg.SettingsCacheTTL)
	}

	// --- Infra clients ---
	dns := dnscheck.New(cfg.DNSTimeout)
	assetClient := assets.NewClient(cfg.AssetsAPIURL, cfg.AssetsAPIToken, cfg.SignedURLTTL, logger)

	// --- Background tasks ---
	runner := tasks.NewRunner(cfg.TaskMaxConcurrency, cfg.TaskMaxRetries, cfg.TaskInitialBackoff, metrics, logger)

	// --- Scoped data access ---
	store := scoped.New(data, metrics, logger)

	// --- Services ---
	generator := service.NewDomainGenerator(cfg.BaseDomain)
	domainSvc := service.NewDomainService(store, generator, dns, settingsCache, metrics, logger)
	settingsSvc := service.NewSettingsService(store, settingsCache, assetClient, runner, metrics, logger)
	userSvc := service.NewUserService(store, runner, logger)
	provisioningSvc := service.NewProvisioningService(store, domainSvc, generator, runner, logger)
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Domains:      domainSvc,
		Settings:     settingsSvc,
		Users:        userSvc,
		Provisioning: provisioningSvc,
		Auth:         authSvc,
		Metrics:      metrics,
		Backend:      backend,
		AdminOrigin:  cfg.AdminOrigin,
		Logger:       logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}
	if err := runner.Shutdown(ctx); err != nil {
		logger.Warn("background tasks did not drain", zap.Error(err))
	}

	logger.Info("server stopped")
}
