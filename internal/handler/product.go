package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/storefront/storefront/internal/handler/dto"
	"github.com/storefront/storefront/internal/service"
)

// ProductHandler handles HTTP requests for product operations.
type ProductHandler struct {
	svc    *service.ProductService
	logger *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, dto.ErrInvalidPrice) {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request! price must be a number")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request! name, description and price are required")
		return
	}

	product, err := h.svc.Create(r.Context(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.Float(),
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("product_created", slog.Int64("product_id", product.ID))

	writeJSON(w, http.StatusOK, dto.ProductResponse{
		Message: "Product created!",
		Data:    *product,
	})
}

// List handles GET /product.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ProductListResponse{
		Message:  "Products found successfully",
		Products: products,
	})
}

// Get handles GET /product/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	product, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ProductResponse{
		Message: "Product found successfully",
		Data:    *product,
	})
}

// Update handles PATCH /product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		switch {
		case errors.Is(err, dto.ErrInvalidID):
			handleServiceError(h.logger, w, r, service.ErrProductNotFound)
		case errors.Is(err, dto.ErrInvalidPrice):
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request! price must be a number")
		default:
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request! malformed JSON body")
		}
		return
	}

	product, err := h.svc.Update(r.Context(), int64(req.ID), req.Patch())
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("product_updated", slog.Int64("product_id", product.ID))

	writeJSON(w, http.StatusOK, dto.ProductResponse{
		Message: "Product updated!",
		Data:    *product,
	})
}

// Delete handles DELETE /product/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	product, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("product_deleted", slog.Int64("product_id", product.ID))

	writeJSON(w, http.StatusOK, dto.ProductResponse{
		Message: "Product deleted!",
		Data:    *product,
	})
}

// pathID extracts the {id} URL parameter. A missing id is a 400; an id
// that cannot match any product is a 404.
func (h *ProductHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request! id is required")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		handleServiceError(h.logger, w, r, service.ErrProductNotFound)
		return 0, false
	}
	return id, true
}
