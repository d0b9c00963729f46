// Package storage persists whole collections as JSON documents.
//
// A collection is read in full, mutated in memory and written back in full.
// Backends only move opaque documents around; encoding and the
// load-mutate-replace cycle live in Collection.
package storage

import (
	"context"
	"errors"
)

// Collection names.
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
)

var (
	// ErrStorageUnavailable indicates a collection could not be read or parsed.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrCollectionMissing indicates the backing document does not exist.
	ErrCollectionMissing = errors.New("collection document missing")
)

// Backend stores one opaque document per collection name.
type Backend interface {
	// Read returns the whole document. It returns ErrCollectionMissing
	// when no document exists for name.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the whole document. A concurrent Read never observes
	// a partially written document.
	Write(ctx context.Context, name string, data []byte) error
	// Ensure creates an empty collection document if none exists.
	Ensure(ctx context.Context, name string) error
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}
