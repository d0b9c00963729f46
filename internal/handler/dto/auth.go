// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/model"
)

// CredentialsRequest is the body of POST /register and POST /login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is returned by POST /register.
type RegisterResponse struct {
	Message string           `json:"message"`
	Data    model.PublicUser `json:"data"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DashboardResponse is returned by GET /dashboard.
type DashboardResponse struct {
	Message  string          `json:"message"`
	User     *auth.Claims    `json:"user"`
	Products []model.Product `json:"products"`
}
