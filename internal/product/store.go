// internal/product/store.go
package product

import "context"

// Store is the stock store contract. Any backing implementation must keep
// the Reserve atomicity guarantee: the conditional decrement is a single
// indivisible operation, never a read followed by a write.
type Store interface {
	// FindByID retrieves a single product. Returns ErrNotFound if no
	// product exists with the given id.
	FindByID(ctx context.Context, id int64) (Product, error)

	// FindAll returns a page of products ordered by id.
	FindAll(ctx context.Context, offset, limit int) ([]Product, error)

	// Search returns products whose name contains the keyword,
	// case-insensitively.
	Search(ctx context.Context, keyword string) ([]Product, error)

	// Save inserts p when its ID is zero, assigning a new id, and
	// otherwise replaces the stored record wholesale. Returns
	// ErrDuplicate on a name conflict and ErrNotFound when updating a
	// missing id.
	Save(ctx context.Context, p Product) (Product, error)

	// Delete removes a product by id. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every product. Used by the demo seeder.
	DeleteAll(ctx context.Context) error

	// Reserve decrements the stock of the product with the given id by
	// qty, but only if stock >= qty. It reports the number of affected
	// rows: 1 on success, 0 when the id is missing or the stock is
	// insufficient. Under concurrent calls against one product, exactly
	// the reservations that fit succeed; stock never goes negative.
	Reserve(ctx context.Context, id int64, qty int) (int64, error)
}

// StockNotifier publishes a stock-change event for a product. Publishing
// is best-effort: a failure must never undo the mutation that produced it.
type StockNotifier interface {
	Publish(ctx context.Context, productID int64, quantity int, action string) error
}
