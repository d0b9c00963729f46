package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/config"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/service"
	"github.com/storefront/storefront/internal/storage"
)

type output struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Created   bool      `json:"created"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// bootstrap-user creates an account in the configured store (unless it
// already exists) and prints a bearer token for it. It reads the same
// environment as the server.
func main() {
	var (
		email    = flag.String("email", "admin@storefront.local", "Account email")
		password = flag.String("password", os.Getenv("BOOTSTRAP_PASSWORD"), "Account password (default $BOOTSTRAP_PASSWORD)")
		seed     = flag.Bool("seed", true, "Create missing collections before writing")
		format   = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "a password is required (-password or BOOTSTRAP_PASSWORD)")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "read .env:", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, "open storage:", err)
		os.Exit(1)
	}
	store := storage.NewStore(backend)
	defer store.Close()

	if *seed {
		if err := store.Seed(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "seed storage:", err)
			os.Exit(1)
		}
	}

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token issuer:", err)
		os.Exit(1)
	}
	svc, err := service.NewAuthService(store.Users, issuer, model.NewIDGenerator(), cfg.BcryptCost, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "auth service:", err)
		os.Exit(1)
	}

	created, err := ensureUser(ctx, svc, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	result, err := svc.Login(ctx, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "login:", err)
		os.Exit(1)
	}

	out := output{
		UserID:    result.User.ID,
		Email:     result.User.Email,
		Created:   created,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureUser registers email unless it already exists. It reports whether a
// new account was created.
func ensureUser(ctx context.Context, svc *service.AuthService, email, password string) (bool, error) {
	_, err := svc.Register(ctx, email, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, service.ErrDuplicateEmail):
		return false, nil
	default:
		return false, fmt.Errorf("create user: %w", err)
	}
}
