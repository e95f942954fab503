// internal/product/implementation.go
package product

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// service implements the Service interface.
type service struct {
	store     Store
	publisher StockNotifier
	logger    *zap.Logger
}

// NewService creates a new product service instance. The store is expected
// to already carry the resilience policies; this layer decides what a
// degraded answer looks like.
func NewService(store Store, publisher StockNotifier, logger *zap.Logger) Service {
	return &service{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// GetAll returns one page of products.
func (s *service) GetAll(ctx context.Context, page, size int) ([]Product, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	products, err := s.store.FindAll(ctx, page*size, size)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a product. When the store cannot be consulted the
// sentinel record is returned instead of an error, so callers always get
// a renderable product; only ErrNotFound propagates as a distinct answer.
func (s *service) GetByID(ctx context.Context, id int64) (Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, err
		}
		s.logger.Warn("serving degraded product read",
			zap.Int64("product_id", id),
			zap.Error(err),
		)
		return Fallback(), nil
	}
	return p, nil
}

// Search finds products by name keyword.
func (s *service) Search(ctx context.Context, keyword string) ([]Product, error) {
	products, err := s.store.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// Create validates and stores a new product, then announces it.
func (s *service) Create(ctx context.Context, p Product) (Product, error) {
	if p.Name == "" {
		return Product{}, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.Price < 0 {
		return Product{}, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if p.Stock < 0 {
		return Product{}, fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}

	p.ID = 0
	saved, err := s.store.Save(ctx, p)
	if err != nil {
		if IsTerminal(err) {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("create product: %w", err)
	}

	s.notify(ctx, saved.ID, saved.Stock, ActionCreate)
	return saved, nil
}

// UpdateStock replaces the absolute stock level of a product.
func (s *service) UpdateStock(ctx context.Context, id int64, newStock int) (Product, error) {
	if newStock < 0 {
		return Product{}, fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("update stock: %w", err)
	}

	existing.Stock = newStock
	saved, err := s.store.Save(ctx, existing)
	if err != nil {
		if IsTerminal(err) {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("update stock: %w", err)
	}

	s.notify(ctx, saved.ID, saved.Stock, ActionUpdate)
	return saved, nil
}

// Delete removes a product and announces the removal.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if IsTerminal(err) {
			return err
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.notify(ctx, id, 0, ActionDelete)
	return nil
}

// notify publishes a stock event without letting a transport failure roll
// back the committed mutation.
func (s *service) notify(ctx context.Context, productID int64, quantity int, action string) {
	if err := s.publisher.Publish(ctx, productID, quantity, action); err != nil {
		s.logger.Error("stock event not published",
			zap.Int64("product_id", productID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
