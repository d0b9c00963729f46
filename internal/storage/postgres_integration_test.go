//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/testutil"
)

func TestPostgresBackend_RoundTrip(t *testing.T) {
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := testutil.UniqueID("collections_test")
	backend, err := OpenPostgres(ctx, dbURL, table)
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	defer func() {
		_, _ = backend.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+backend.table)
		backend.Close()
	}()

	unlock, err := testutil.AcquireDBLock(ctx, backend.pool)
	if err != nil {
		t.Fatalf("AcquireDBLock failed: %v", err)
	}
	defer func() { _ = unlock() }()

	store := NewStore(backend)
	if err := store.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	products := []model.Product{testutil.NewTestProduct(t, "Pen", 1.5)}
	if err := store.Products.Replace(ctx, products); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, err := store.Products.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || got[0] != products[0] {
		t.Errorf("Load() = %+v, want %+v", got, products)
	}
}

func TestPostgresBackend_SharedAcrossStores(t *testing.T) {
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := testutil.UniqueID("collections_test")
	first, err := OpenPostgres(ctx, dbURL, table)
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	defer func() {
		_, _ = first.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+first.table)
		first.Close()
	}()

	second, err := OpenPostgres(ctx, dbURL, table)
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	defer second.Close()

	writer := NewStore(first)
	if err := writer.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	user := testutil.NewTestUser(t, "a@x.com", "secret")
	if err := writer.Users.Replace(ctx, []model.User{user}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	reader := NewStore(second)
	if err := reader.Check(ctx); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	users, err := reader.Users.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(users) != 1 || users[0].Email != "a@x.com" {
		t.Errorf("unexpected users: %+v", users)
	}
}
