// internal/product/service.go
package product

import "context"

// Service defines the interface for the product catalog service.
type Service interface {
	GetAll(ctx context.Context, page, size int) ([]Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	Search(ctx context.Context, keyword string) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	UpdateStock(ctx context.Context, id int64, newStock int) (Product, error)
	Delete(ctx context.Context, id int64) error
	SeedDemo(ctx context.Context) error
}
