package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/storefront/storefront/internal/model"
)

var (
	// ErrInvalidID indicates an id that is neither a number nor a numeric string.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidPrice indicates a price that is neither a number nor a numeric string.
	ErrInvalidPrice = errors.New("invalid price")
)

// ProductID accepts a JSON number or a numeric string.
// The zero value means the id was absent or empty.
type ProductID int64

// UnmarshalJSON implements json.Unmarshaler.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidID
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*id = 0
			return nil
		}
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ErrInvalidID
	}
	*id = ProductID(v)
	return nil
}

// Price accepts a JSON number or a numeric string, as sent by HTML form
// inputs. An empty string decodes to zero, which counts as not supplied.
type Price float64

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidPrice
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*p = 0
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidPrice
	}
	*p = Price(v)
	return nil
}

// Float returns the price as *float64, keeping nil for an absent field.
func (p *Price) Float() *float64 {
	if p == nil {
		return nil
	}
	v := float64(*p)
	return &v
}

// CreateProductRequest represents the request body for creating a product.
type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       *Price `json:"price"`
}

// UpdateProductRequest represents the request body for PATCH /product.
type UpdateProductRequest struct {
	ID          ProductID `json:"id"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *Price    `json:"price,omitempty"`
}

// Patch returns the partial update carried by the request.
func (r UpdateProductRequest) Patch() model.ProductPatch {
	return model.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price.Float(),
	}
}

// ProductResponse wraps a single product.
type ProductResponse struct {
	Message string        `json:"message"`
	Data    model.Product `json:"data"`
}

// ProductListResponse wraps the catalogue.
type ProductListResponse struct {
	Message  string          `json:"message"`
	Products []model.Product `json:"products"`
}
