package service

import (
	"context"
	"fmt"

	"github.com/storefront/storefront/internal/metrics"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/storage"
)

// ProductService handles product business logic.
type ProductService struct {
	products *storage.Collection[model.Product]
	ids      *model.IDGenerator
	metrics  metrics.Recorder
}

// NewProductService creates a new ProductService.
func NewProductService(products *storage.Collection[model.Product], ids *model.IDGenerator, recorder metrics.Recorder) *ProductService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProductService{
		products: products,
		ids:      ids,
		metrics:  recorder,
	}
}

// CreateProductInput defines input for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       *float64
}

// Create appends a new product. Name, description and a non-zero price are required.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*model.Product, error) {
	if input.Name == "" || input.Description == "" || input.Price == nil || *input.Price == 0 {
		return nil, fmt.Errorf("%w: name, description and price are required", ErrInvalidRequest)
	}

	var created model.Product
	err := s.products.Update(ctx, func(products []model.Product) ([]model.Product, error) {
		created = model.Product{
			ID:          s.ids.Next(),
			Name:        input.Name,
			Description: input.Description,
			Price:       *input.Price,
		}
		return append(products, created), nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncProductCreated()
	return &created, nil
}

// List returns the whole catalogue.
func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	return s.products.Load(ctx)
}

// Get returns a single product.
func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	var found model.Product
	err := s.products.View(ctx, func(products []model.Product) error {
		idx := model.FindProduct(products, id)
		if idx < 0 {
			return ErrProductNotFound
		}
		found = products[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// Update applies a partial update to the product with the given id.
func (s *ProductService) Update(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidRequest)
	}

	var updated model.Product
	err := s.products.Update(ctx, func(products []model.Product) ([]model.Product, error) {
		idx := model.FindProduct(products, id)
		if idx < 0 {
			return nil, ErrProductNotFound
		}
		patch.Apply(&products[idx])
		updated = products[idx]
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncProductUpdated()
	return &updated, nil
}

// Delete removes the product with the given id and returns it.
func (s *ProductService) Delete(ctx context.Context, id int64) (*model.Product, error) {
	var deleted model.Product
	err := s.products.Update(ctx, func(products []model.Product) ([]model.Product, error) {
		idx := model.FindProduct(products, id)
		if idx < 0 {
			return nil, ErrProductNotFound
		}
		deleted = products[idx]
		return append(products[:idx], products[idx+1:]...), nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncProductDeleted()
	return &deleted, nil
}
