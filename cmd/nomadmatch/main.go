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

	"github.com/nomadmatch/nomadmatch/internal/config"
	dbRedis "github.com/nomadmatch/nomadmatch/internal/db/redis"
	logpkg "github.com/nomadmatch/nomadmatch/internal/logger"
	"github.com/nomadmatch/nomadmatch/internal/metrics"
	corpusrepo "github.com/nomadmatch/nomadmatch/internal/repository/corpus"
	userrepo "github.com/nomadmatch/nomadmatch/internal/repository/user"
	chiTransport "github.com/nomadmatch/nomadmatch/internal/transport/chi"
	openaiTransport "github.com/nomadmatch/nomadmatch/internal/transport/openai"
	"github.com/nomadmatch/nomadmatch/internal/usecase/advice"
	authuc "github.com/nomadmatch/nomadmatch/internal/usecase/auth"
	corpusuc "github.com/nomadmatch/nomadmatch/internal/usecase/corpus"
	healthuc "github.com/nomadmatch/nomadmatch/internal/usecase/health"
	"github.com/nomadmatch/nomadmatch/internal/usecase/ingest"
	"github.com/nomadmatch/nomadmatch/internal/usecase/retrieve"
	"github.com/nomadmatch/nomadmatch/internal/version"
)

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

	logger.Info("Starting nomadmatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
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

	// Register provider and ingestion metrics explicitly (no init())
	metrics.RegisterProviderMetrics()
	metrics.RegisterIngestMetrics()

	embCfg := &openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	}
	embedder := openaiTransport.NewEmbedder(embCfg)
	chatClient := openaiTransport.NewChatClient(embCfg, cfg.Embedding.ChatModel)
	logger.Info("Providers created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("chat_model", cfg.Embedding.ChatModel),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Create repositories (domain-native, no adapters)
	corpusRepo := corpusrepo.New(store)
	userRepo := userrepo.New(store)

	// Corpus store. A failed Init leaves the store uninitialized and the
	// API serving empty results, so an unreachable index is not fatal.
	corpusStore := corpusuc.New(corpusRepo, embedder, logger).
		WithBatchSize(cfg.Index.BatchSize)
	if err := corpusStore.Init(ctx, corpusrepo.IndexParams{
		Dimensions:  cfg.Embedding.Dimensions,
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	}); err != nil {
		logger.Error("Corpus index init failed, serving degraded", zap.Error(err))
	}

	ingestSvc := ingest.New(corpusStore, logger)
	if cfg.Data.AutoIngest && corpusStore.Initialized() {
		if _, err := ingestSvc.AutoIngest(ctx, cfg.Data.Dirs); err != nil {
			logger.Error("Auto-ingest failed", zap.Error(err))
		}
	}

	// Create use case services
	tokens := authuc.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
	authSvc := authuc.New(userRepo, tokens)
	adviceSvc := advice.New(chatClient, logger)
	retriever := retrieve.New(corpusStore)
	healthSvc := healthuc.New(store, embedder, corpusStore,
		corpusrepo.Collection, cfg.Embedding.Model, cfg.Embedding.Dimensions)

	// Create chi server
	server := chiTransport.NewServer(
		retriever, ingestSvc, authSvc, adviceSvc, healthSvc,
		cfg.Index.DefaultResults, cfg.Index.MaxResults, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.JWTAuthMiddleware(authSvc))
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
