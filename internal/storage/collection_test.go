package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/storefront/storefront/internal/model"
)

func newFileStore(t *testing.T) (*Store, *FileBackend) {
	t.Helper()

	backend := NewFileBackend(t.TempDir(), nil)
	store := NewStore(backend)
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	return store, backend
}

func TestCollection_LoadEmpty(t *testing.T) {
	t.Parallel()

	store, _ := newFileStore(t)

	products, err := store.Products.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", products)
	}
}

func TestCollection_ReplaceThenLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, backend := newFileStore(t)

	want := []model.Product{
		{ID: 1, Name: "Pen", Description: "Blue pen", Price: 1.5},
		{ID: 2, Name: "Ink", Description: "Black ink", Price: 4},
	}
	if err := store.Products.Replace(ctx, want); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, err := store.Products.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	raw, err := os.ReadFile(backend.Path(ProductsCollection))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(raw), "\n    {\n        \"id\": 1,") {
		t.Errorf("expected 4-space indented JSON, got:\n%s", raw)
	}
}

func TestCollection_ReplaceNilWritesEmptyArray(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, backend := newFileStore(t)

	if err := store.Users.Replace(ctx, nil); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	raw, err := os.ReadFile(backend.Path(UsersCollection))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("expected [], got %q", raw)
	}
}

func TestCollection_LoadFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content *string
	}{
		{"missing file", nil},
		{"empty file", ptr("")},
		{"invalid json", ptr("[{")},
		{"null", ptr("null")},
		{"object", ptr(`{"id": 1}`)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			backend := NewFileBackend(dir, nil)
			if tt.content != nil {
				path := backend.Path(ProductsCollection)
				if err := os.WriteFile(path, []byte(*tt.content), 0o644); err != nil {
					t.Fatalf("write fixture: %v", err)
				}
			}

			coll := NewCollection[model.Product](backend, ProductsCollection)
			_, err := coll.Load(context.Background())
			if !errors.Is(err, ErrStorageUnavailable) {
				t.Errorf("expected ErrStorageUnavailable, got %v", err)
			}
		})
	}
}

func TestCollection_UpdateErrorLeavesDocumentUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newFileStore(t)

	seed := []model.Product{{ID: 1, Name: "Pen", Description: "Blue pen", Price: 1.5}}
	if err := store.Products.Replace(ctx, seed); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	sentinel := errors.New("boom")
	err := store.Products.Update(ctx, func(items []model.Product) ([]model.Product, error) {
		return nil, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	got, err := store.Products.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || got[0] != seed[0] {
		t.Errorf("collection changed: %+v", got)
	}
}

func TestCollection_ConcurrentUpdatesAreSerialized(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newFileStore(t)

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			err := store.Products.Update(ctx, func(items []model.Product) ([]model.Product, error) {
				return append(items, model.Product{ID: id, Name: "p", Description: "d", Price: 1}), nil
			})
			if err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	got, err := store.Products.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != writers {
		t.Errorf("expected %d products, got %d (lost update)", writers, len(got))
	}
}

func TestFileBackend_PathOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	custom := filepath.Join(dir, "nested", "people.json")
	backend := NewFileBackend(dir, map[string]string{UsersCollection: custom, ProductsCollection: ""})

	if got := backend.Path(UsersCollection); got != custom {
		t.Errorf("Path(users) = %s, want %s", got, custom)
	}
	if got := backend.Path(ProductsCollection); got != filepath.Join(dir, "products.json") {
		t.Errorf("Path(products) = %s", got)
	}

	if err := backend.Ensure(context.Background(), UsersCollection); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if _, err := os.Stat(custom); err != nil {
		t.Errorf("expected seeded file at %s: %v", custom, err)
	}
}

func TestFileBackend_Ping(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	overrides := map[string]string{
		UsersCollection:    filepath.Join(root, "accounts", "users.json"),
		ProductsCollection: filepath.Join(root, "catalogue", "products.json"),
	}

	t.Run("explicit files without data dir", func(t *testing.T) {
		store := NewStore(NewFileBackend("", overrides))
		if err := store.Seed(ctx); err != nil {
			t.Fatalf("Seed failed: %v", err)
		}
		if err := store.Check(ctx); err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if err := store.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("missing collection dir", func(t *testing.T) {
		backend := NewFileBackend(root, map[string]string{
			ProductsCollection: filepath.Join(root, "absent", "products.json"),
		})
		if err := backend.Ping(ctx); err == nil {
			t.Error("expected Ping to fail for a missing directory")
		}
	})

	t.Run("data dir is a file", func(t *testing.T) {
		file := filepath.Join(root, "plain")
		if err := os.WriteFile(file, nil, 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if err := NewFileBackend(file, nil).Ping(ctx); err == nil {
			t.Error("expected Ping to fail when the data dir is a file")
		}
	})
}

func TestFileBackend_EnsureKeepsExistingData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewFileBackend(t.TempDir(), nil)
	path := backend.Path(UsersCollection)
	if err := os.WriteFile(path, []byte(`[{"id":1,"email":"a@x.com","password":"h"}]`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := backend.Ensure(ctx, UsersCollection); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	users, err := NewCollection[model.User](backend, UsersCollection).Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(users) != 1 || users[0].Email != "a@x.com" {
		t.Errorf("existing data lost: %+v", users)
	}
}

func TestStore_Check(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewFileBackend(t.TempDir(), nil)
	store := NewStore(backend)

	if err := store.Check(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable before seeding, got %v", err)
	}

	if err := store.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := store.Check(ctx); err != nil {
		t.Errorf("Check after seed failed: %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Options{Driver: "mongo"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func ptr(s string) *string { return &s }

func TestCollection_View(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newFileStore(t)
	if err := store.Products.Replace(ctx, []model.Product{{ID: 1, Name: "A", Description: "a", Price: 1}}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	var names []string
	err := store.Products.View(ctx, func(products []model.Product) error {
		for _, p := range products {
			names = append(names, p.Name)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(names) != 1 || names[0] != "A" {
		t.Errorf("unexpected names: %v", names)
	}

	sentinel := errors.New("stop")
	if err := store.Products.View(ctx, func([]model.Product) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("expected callback error, got %v", err)
	}
}

// failingWriter is a backend whose writes always fail.
type failingWriter struct {
	*FileBackend
}

func (failingWriter) Write(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestCollection_WriteFailureIsStorageUnavailable(t *testing.T) {
	t.Parallel()

	_, backend := newFileStore(t)
	products := NewCollection[model.Product](failingWriter{backend}, ProductsCollection)

	err := products.Replace(context.Background(), []model.Product{{ID: 1}})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}
