package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"basegraph.app/scout/common/id"
	"basegraph.app/scout/common/logger"
	"basegraph.app/scout/common/otel"
	"basegraph.app/scout/core/config"
	"basegraph.app/scout/core/db"
	"basegraph.app/scout/internal/admission"
	"basegraph.app/scout/internal/cache"
	"basegraph.app/scout/internal/github"
	"basegraph.app/scout/internal/http/middleware"
	httprouter "basegraph.app/scout/internal/http/router"
	"basegraph.app/scout/internal/retrieval"
	"basegraph.app/scout/internal/service"
	"basegraph.app/scout/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "scout starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	var turns store.TurnStore
	if cfg.DB.Enabled() {
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()

		if err := store.EnsureSchema(ctx, database); err != nil {
			slog.ErrorContext(ctx, "failed to prepare database schema", "error", err)
			os.Exit(1)
		}
		turns = store.NewTurnStore(database)
		slog.InfoContext(ctx, "database connected")
	} else {
		turns = store.NewMemoryTurnStore()
		slog.InfoContext(ctx, "no DATABASE_URL, keeping conversation turns in memory")
	}

	responses, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up response cache", "error", err)
		os.Exit(1)
	}
	defer closeCache()

	client, err := github.NewClient(github.Config{
		Endpoint: cfg.GitHub.Endpoint,
		Token:    cfg.GitHub.Token,
		Timeout:  cfg.GitHub.Timeout,
		MaxDepth: cfg.Retrieval.MaxDepth,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create github client", "error", err)
		os.Exit(1)
	}

	limiter := admission.New(admission.Config{
		Window: cfg.Retrieval.AdmissionWindow,
		Limit:  cfg.Retrieval.AdmissionLimit,
	})

	services := service.NewServices(turns, retrieval.NewService(client, limiter, responses))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, limiter)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// newCache picks the response cache backend. The returned func releases it.
func newCache(ctx context.Context, cfg config.Config) (cache.Cache, func(), error) {
	cacheCfg := cache.Config{
		Capacity: cfg.Retrieval.CacheCapacity,
		TTL:      cfg.Retrieval.CacheTTL,
	}

	if cfg.Retrieval.CacheBackend != config.CacheBackendRedis {
		slog.InfoContext(ctx, "using in-memory response cache", "capacity", cacheCfg.Capacity, "ttl", cacheCfg.TTL)
		return cache.NewMemory(cacheCfg), func() {}, nil
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	slog.InfoContext(ctx, "redis connected, using shared response cache", "capacity", cacheCfg.Capacity, "ttl", cacheCfg.TTL)

	return cache.NewRedis(redisClient, cacheCfg), func() { _ = redisClient.Close() }, nil
}

func setupRouter(cfg config.Config, services *service.Services, limiter *admission.Controller) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Admission:      limiter,
		AdmissionLimit: cfg.Retrieval.AdmissionLimit,
		RetryAfter:     limiter.Window(),
	})

	return router
}

const banner = `
 ███████╗ ██████╗ ██████╗ ██╗   ██╗████████╗
 ██╔════╝██╔════╝██╔═══██╗██║   ██║╚══██╔══╝
 ███████╗██║     ██║   ██║██║   ██║   ██║
 ╚════██║██║     ██║   ██║██║   ██║   ██║
 ███████║╚██████╗╚██████╔╝╚██████╔╝   ██║
 ╚══════╝ ╚═════╝ ╚═════╝  ╚═════╝    ╚═╝
`
