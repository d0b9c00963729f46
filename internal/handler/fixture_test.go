package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/metrics"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/service"
	"github.com/storefront/storefront/internal/storage"
)

type fixture struct {
	store    *storage.Store
	issuer   *auth.TokenIssuer
	authSvc  *service.AuthService
	products *service.ProductService
	recorder *metrics.InMemoryRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := storage.NewStore(storage.NewFileBackend(t.TempDir(), nil))
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	issuer, err := auth.NewTokenIssuer("handler-secret", auth.DefaultTokenTTL)
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}

	recorder := metrics.NewInMemory()
	ids := model.NewIDGenerator()
	authSvc, err := service.NewAuthService(store.Users, issuer, ids, 4, recorder)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}
	return &fixture{
		store:    store,
		issuer:   issuer,
		authSvc:  authSvc,
		products: service.NewProductService(store.Products, ids, recorder),
		recorder: recorder,
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
