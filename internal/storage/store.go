package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/storefront/internal/model"
)

// Supported backend drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver       string
	DataDir      string
	UsersFile    string
	ProductsFile string
	SQLitePath   string
	DatabaseURL  string
	Table        string
}

// Open creates the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	table := opts.Table
	if table == "" {
		table = "collections"
	}

	switch opts.Driver {
	case DriverFile, "":
		return NewFileBackend(opts.DataDir, map[string]string{
			UsersCollection:    opts.UsersFile,
			ProductsCollection: opts.ProductsFile,
		}), nil
	case DriverSQLite:
		return OpenSQLite(ctx, opts.SQLitePath, table)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL, table)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

// Store groups the application's collections over one backend.
type Store struct {
	backend  Backend
	Users    *Collection[model.User]
	Products *Collection[model.Product]
}

// NewStore creates a Store over backend.
func NewStore(backend Backend) *Store {
	return &Store{
		backend:  backend,
		Users:    NewCollection[model.User](backend, UsersCollection),
		Products: NewCollection[model.Product](backend, ProductsCollection),
	}
}

// Seed creates any missing collection as an empty array.
func (s *Store) Seed(ctx context.Context) error {
	for _, name := range []string{UsersCollection, ProductsCollection} {
		if err := s.backend.Ensure(ctx, name); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return nil
}

// Check loads every collection once. The server must not start serving
// requests when it fails.
func (s *Store) Check(ctx context.Context) error {
	_, usersErr := s.Users.Load(ctx)
	_, productsErr := s.Products.Load(ctx)
	return errors.Join(usersErr, productsErr)
}

// Ping checks backend connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
