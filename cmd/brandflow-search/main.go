package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/adequity/brandflow-search/internal/config"
	dbRedis "github.com/adequity/brandflow-search/internal/db/redis"
	"github.com/adequity/brandflow-search/internal/domain/schema"
	logpkg "github.com/adequity/brandflow-search/internal/logger"
	"github.com/adequity/brandflow-search/internal/metrics"
	"github.com/adequity/brandflow-search/internal/repository/memory"
	"github.com/adequity/brandflow-search/internal/repository/postgres"
	"github.com/adequity/brandflow-search/internal/repository/suggestcache"
	chiTransport "github.com/adequity/brandflow-search/internal/transport/chi"
	healthuc "github.com/adequity/brandflow-search/internal/usecase/health"
	searchuc "github.com/adequity/brandflow-search/internal/usecase/search"
	statsuc "github.com/adequity/brandflow-search/internal/usecase/stats"
	suggestuc "github.com/adequity/brandflow-search/internal/usecase/suggest"
	"github.com/adequity/brandflow-search/internal/version"
)

// storage is what a backend driver has to provide.
type storage interface {
	searchuc.Repository
	suggestuc.Repository
	statsuc.Repository
	Ping(ctx context.Context) error
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting brandflow-search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	// Create storage backend based on driver
	var repo storage
	switch cfg.Database.Driver {
	case "memory":
		repo = memory.NewRepo()
	case "postgres":
		pg, err := postgres.NewRepo(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to postgres", zap.Error(err))
		}
		defer pg.Close()
		repo = pg
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	logger.Info("Connected to storage")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	registry := schema.BuiltIn()

	// Suggestion repository, optionally cached in Redis.
	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var suggestRepo suggestuc.Repository = repo
	var cachePinger healthuc.CachePinger
	if len(cfg.Cache.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to suggestion cache", zap.Strings("addrs", cfg.Cache.Addrs))

		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		suggestRepo = suggestcache.New(repo, store, ttl, metrics.SuggestionCacheTotal, logger)
		cachePinger = store
	}

	// Create use case services
	searchSvc := searchuc.New(repo, registry, logger)
	suggestSvc := suggestuc.New(suggestRepo, registry, logger)
	statsSvc := statsuc.New(repo, registry)
	healthSvc := healthuc.New(repo, cachePinger)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, suggestSvc, statsSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
