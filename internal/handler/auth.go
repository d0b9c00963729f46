package handler

import (
	"log/slog"
	"net/http"

	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/handler/dto"
	"github.com/storefront/storefront/internal/service"
)

// AuthHandler handles account endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	products *service.ProductService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, productSvc *service.ProductService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     authSvc,
		products: productSvc,
		logger:   logger,
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request! Email and Password required")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("user_registered", slog.Int64("user_id", user.ID))

	writeJSON(w, http.StatusOK, dto.RegisterResponse{
		Message: "User created!",
		Data:    user.ToPublic(),
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request! email and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("user_logged_in", slog.Int64("user_id", result.User.ID))

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Message:   "User logged!",
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// Dashboard handles GET /dashboard. Requires the bearer middleware.
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		handleServiceError(h.logger, w, r, auth.ErrMissingToken)
		return
	}

	products, err := h.products.List(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardResponse{
		Message:  "Welcome user",
		User:     claims,
		Products: products,
	})
}
