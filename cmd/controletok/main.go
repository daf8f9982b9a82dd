package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/controletok-go/internal/config"
	"github.com/boddenberg/controletok-go/internal/handler"
	"github.com/boddenberg/controletok-go/internal/infra/cache"
	"github.com/boddenberg/controletok-go/internal/infra/client"
	"github.com/boddenberg/controletok-go/internal/infra/events"
	"github.com/boddenberg/controletok-go/internal/infra/observability"
	"github.com/boddenberg/controletok-go/internal/infra/resilience"
	"github.com/boddenberg/controletok-go/internal/infra/storage"
	"github.com/boddenberg/controletok-go/internal/infra/supabase"
	"github.com/boddenberg/controletok-go/internal/port"
	"github.com/boddenberg/controletok-go/internal/service"

	"github.com/shopspring/decimal"
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

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("advice_provider", cfg.AdviceProvider),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Bool("events_enabled", cfg.AMQPURL != ""),
	)

	// Valores monetários saem como número JSON, não string.
	decimal.MarshalJSONWithoutQuotes = true

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), "controletok", cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("advice-generator", logger)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// --- Storage ---
	store, checks, closeStore, err := openStore(cfg, httpClient, resilienceCfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeStore()

	// --- Advice generator ---

	var generator port.TextGenerator
	switch cfg.AdviceProvider {
	case config.AdviceAgent:
		logger.Info("advice via agent API", zap.String("agent_url", cfg.AgentAPIURL))
		generator = client.NewAgentClient(httpClient, cfg.AgentAPIURL, cb, resilienceCfg)
	case config.AdviceOpenAI:
		logger.Info("advice via OpenAI-compatible API",
			zap.String("base_url", cfg.OpenAIBaseURL),
			zap.String("model", cfg.OpenAIModel),
		)
		generator = client.NewOpenAIClient(httpClient, client.OpenAIConfig{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
		}, cb, resilienceCfg)
	default:
		logger.Warn("advice generator disabled, advice requests get the fallback message")
	}

	adviceCache := cache.New[string](cfg.CacheTTL)
	defer adviceCache.Close()

	advisor := service.NewAdvisor(
		generator,
		adviceCache,
		resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics,
		logger,
	)

	// --- Change events ---
	var notifier port.ChangeNotifier = events.Nop{}
	if cfg.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Fatal("failed to connect to broker", zap.Error(err))
		}
		defer publisher.Close()
		notifier = publisher
		logger.Info("change events enabled", zap.String("exchange", cfg.AMQPExchange))
	}

	// --- Session controller ---
	ctrl := service.NewController(
		store,
		service.NewSimulatedAuthenticator(cfg.LoginDelay, logger),
		advisor,
		notifier,
		metrics,
		logger,
	)
	if user, ok, err := ctrl.Restore(context.Background()); err != nil {
		logger.Error("failed to restore session", zap.Error(err))
	} else if ok {
		logger.Info("session restored", zap.String("email", user.Email))
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// --- Router ---
	router := handler.NewRouter(ctrl, tokens, checks, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
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
		logger.Error("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// openStore builds the configured KV backend together with its health
// checks and a close function.
func openStore(cfg *config.Config, httpClient *http.Client, rc resilience.Config, logger *zap.Logger) (port.KVStore, []handler.HealthCheck, func() error, error) {
	switch cfg.StorageBackend {
	case config.StorageSQLite:
		s, err := storage.NewSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("using SQLite storage", zap.String("path", cfg.SQLitePath))
		return s, []handler.HealthCheck{{Name: "sqlite", Ping: s.Ping}}, s.Close, nil

	case config.StorageRedis:
		s, err := storage.NewRedis(storage.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("using Redis storage", zap.String("addr", cfg.RedisAddr))
		return s, []handler.HealthCheck{{Name: "redis", Ping: s.Ping}}, s.Close, nil

	case config.StorageSupabase:
		sb := supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			resilience.NewCircuitBreaker("supabase", logger),
			rc,
			logger,
		)
		s := supabase.NewKVStore(sb, cfg.SupabaseTable)
		logger.Info("using Supabase storage",
			zap.String("supabase_url", cfg.SupabaseURL),
			zap.String("table", cfg.SupabaseTable),
		)
		return s, []handler.HealthCheck{{Name: "supabase", Ping: s.Ping}}, func() error { return nil }, nil

	default:
		logger.Warn("using in-memory storage, data is lost on restart")
		return storage.NewMemory(), nil, func() error { return nil }, nil
	}
}
