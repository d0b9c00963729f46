package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/storefront/storefront/internal/model"
)

func TestSQLiteBackend_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend, err := Open(ctx, Options{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "store.db"),
		Table:      "collections",
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer backend.Close()

	store := NewStore(backend)

	if _, err := store.Users.Load(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable before seed, got %v", err)
	}

	if err := store.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	users := []model.User{{ID: 1, Email: "a@x.com", Password: "hash"}}
	if err := store.Users.Replace(ctx, users); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	// Seeding again must not clobber data.
	if err := store.Seed(ctx); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	got, err := store.Users.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || got[0] != users[0] {
		t.Errorf("Load() = %+v, want %+v", got, users)
	}

	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSQLiteBackend_QuotedTableName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "store.db"), `odd "name"`)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer backend.Close()

	if err := backend.Write(ctx, ProductsCollection, []byte("[]")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := backend.Read(ctx, ProductsCollection)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Read() = %q, want []", data)
	}
}
