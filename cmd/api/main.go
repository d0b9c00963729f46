// Package main is the entrypoint for the Storefront API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/cache"
	"github.com/storefront/storefront/internal/config"
	"github.com/storefront/storefront/internal/metrics"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/server"
	"github.com/storefront/storefront/internal/service"
	"github.com/storefront/storefront/internal/storage"
)

func main() {
	ctx := context.Background()

	// A missing .env file is fine; the environment may be set directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)
	logger.Debug("configuration loaded", slog.String("config", cfg.String()))

	// Initialize storage
	backend, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		logger.Error(
			"failed to open storage",
			slog.String("driver", cfg.StorageDriver),
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	store := storage.NewStore(backend)

	if cfg.StorageSeed {
		if err := store.Seed(ctx); err != nil {
			logger.Error("failed to seed storage", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			os.Exit(1)
		}
	}

	// Every collection must load before the server accepts requests.
	if err := store.Check(ctx); err != nil {
		logger.Error("storage unavailable", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		_ = store.Close()
		os.Exit(1)
	}
	logger.Info("storage ready", slog.String("driver", cfg.StorageDriver))

	// Initialize cache
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			_ = store.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	} else {
		logger.Info("REDIS_URL not set, rate limiting disabled")
	}

	// Initialize services
	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to create token issuer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metricsRecorder := metrics.NewInMemory()
	ids := model.NewIDGenerator()
	authService, err := service.NewAuthService(store.Users, issuer, ids, cfg.BcryptCost, metricsRecorder)
	if err != nil {
		logger.Error("failed to create auth service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	productService := service.NewProductService(store.Products, ids, metricsRecorder)

	// Setup router
	r := server.NewRouter(server.Deps{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Cache:    cacheClient,
		Auth:     authService,
		Products: productService,
		Metrics:  metricsRecorder,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("storage", func(ctx context.Context) error {
		return store.Close()
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"storage", cfg.StorageDriver,
		"protect_product_mutations", cfg.ProtectProductMutations,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
