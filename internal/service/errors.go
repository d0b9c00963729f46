// Package service provides business logic for the application.
package service

import "errors"

// Service errors.
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrProductNotFound    = errors.New("product not found")
)
