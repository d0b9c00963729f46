package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/config"
	"github.com/storefront/storefront/internal/metrics"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/service"
	"github.com/storefront/storefront/internal/storage"
)

type testApp struct {
	server   *httptest.Server
	store    *storage.Store
	recorder *metrics.InMemoryRecorder
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		JWTSecret:          "router-secret",
		TokenTTL:           15 * time.Minute,
		BcryptCost:         4,
		StorageDriver:      storage.DriverFile,
		CORSAllowedOrigins: "*",
		MaxRequestBodySize: 1 << 20,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()

	backend := storage.NewFileBackend(t.TempDir(), nil)
	store := storage.NewStore(backend)
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}

	recorder := metrics.NewInMemory()
	ids := model.NewIDGenerator()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc, err := service.NewAuthService(store.Users, issuer, ids, cfg.BcryptCost, recorder)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}

	router := NewRouter(Deps{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Auth:     authSvc,
		Products: service.NewProductService(store.Products, ids, recorder),
		Metrics:  recorder,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{server: srv, store: store, recorder: recorder}
}

// do sends a request and decodes the JSON response into out when non-nil.
func (a *testApp) do(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			reader = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, data, err)
		}
	}
	return resp
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()

	creds := map[string]string{"email": email, "password": password}
	if resp := a.do(t, http.MethodPost, "/register", "", creds, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("register status = %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if resp := a.do(t, http.MethodPost, "/login", "", creds, &out); resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	return out.Token
}
