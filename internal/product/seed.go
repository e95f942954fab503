// internal/product/seed.go
package product

import (
	"context"
	"fmt"
)

// demoProducts is the sample catalog loaded by SeedDemo.
var demoProducts = []Product{
	{Name: "Samsung Galaxy S23", Description: "Latest Samsung smartphone", Category: "Electronics", Price: 899.99, Stock: 40, ImageURL: "https://picsum.photos/200/200?0"},
	{Name: "iPhone 15", Description: "Latest Apple smartphone", Category: "Electronics", Price: 999.99, Stock: 50, ImageURL: "https://picsum.photos/200/200?1"},
	{Name: "MacBook Air M3", Description: "Lightweight laptop", Category: "Electronics", Price: 1499.99, Stock: 30, ImageURL: "https://picsum.photos/200/200?2"},
	{Name: "Running Shoes", Description: "Comfortable sports shoes", Category: "Fashion", Price: 89.99, Stock: 100, ImageURL: "https://picsum.photos/200/200?3"},
	{Name: "Gaming Chair", Description: "Ergonomic chair", Category: "Furniture", Price: 199.99, Stock: 20, ImageURL: "https://picsum.photos/200/200?4"},
}

// SeedDemo wipes the catalog and loads the demo products. Seeding is an
// administrative reset, so no stock events are emitted for the inserts.
func (s *service) SeedDemo(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	for _, p := range demoProducts {
		if _, err := s.store.Save(ctx, p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	s.logger.Info("demo products initialized")
	return nil
}
