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

	"github.com/clearmark/clearmark/internal/config"
	dbRedis "github.com/clearmark/clearmark/internal/db/redis"
	"github.com/clearmark/clearmark/internal/domain/query"
	logpkg "github.com/clearmark/clearmark/internal/logger"
	"github.com/clearmark/clearmark/internal/metrics"
	requestrepo "github.com/clearmark/clearmark/internal/repository/request"
	resultrepo "github.com/clearmark/clearmark/internal/repository/result"
	chiTransport "github.com/clearmark/clearmark/internal/transport/chi"
	"github.com/clearmark/clearmark/internal/transport/kipris"
	healthuc "github.com/clearmark/clearmark/internal/usecase/health"
	intakeuc "github.com/clearmark/clearmark/internal/usecase/intake"
	reviewuc "github.com/clearmark/clearmark/internal/usecase/review"
	searchuc "github.com/clearmark/clearmark/internal/usecase/search"
	"github.com/clearmark/clearmark/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting clearmark API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("registry_url", cfg.Registry.BaseURL),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register registry metrics explicitly (no init())
	metrics.RegisterRegistryMetrics()

	// Repositories
	requestRepo := requestrepo.New(store, cfg.Storage.KeyPrefix)
	resultRepo := resultrepo.New(store, cfg.Storage.KeyPrefix)

	// Registry client
	registryClient := kipris.NewClient(&kipris.Config{
		BaseURL:     cfg.Registry.BaseURL,
		APIKey:      cfg.Registry.APIKey,
		PageSize:    cfg.Registry.PageSize,
		SortSpec:    cfg.Registry.SortSpec,
		CallTimeout: time.Duration(cfg.Registry.CallTimeoutSec) * time.Second,
		Logger:      logger,
	})

	fetcher, err := searchuc.NewFetcher(
		registryClient, cfg.Registry.MaxConcurrent,
		time.Duration(cfg.Registry.CallTimeoutSec)*time.Second, logger,
	)
	if err != nil {
		logger.Fatal("Failed to create fetch pool", zap.Error(err))
	}
	defer fetcher.Release()

	// Use case services
	intakeSvc := intakeuc.New(requestRepo)
	pipelineSvc := searchuc.New(requestRepo, resultRepo, fetcher, query.NewParser())
	reviewSvc := reviewuc.New(requestRepo, resultRepo)
	healthSvc := healthuc.New(store, registryClient)

	// Create chi server
	server := chiTransport.NewServer(intakeSvc, pipelineSvc, reviewSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
						"error": "internal error",
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
