// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ecommerce/internal/product"
)

// PostgresStore implements product.Store on top of a products table.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgresStore creates a store backed by the given connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("ecommerce/store"),
	}
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "store.find_by_id",
		trace.WithAttributes(attribute.Int64("product.id", id)),
	)
	defer span.End()

	var p product.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, category, price, stock, image_url
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &p.ImageURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, fmt.Errorf("query product: %w", err)
	}

	return p, nil
}

func (s *PostgresStore) FindAll(ctx context.Context, offset, limit int) ([]product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "store.find_all")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, category, price, stock, image_url
		FROM products
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows, span)
}

func (s *PostgresStore) Search(ctx context.Context, keyword string) ([]product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "store.search",
		trace.WithAttributes(attribute.String("search.keyword", keyword)),
	)
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, category, price, stock, image_url
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
	`, keyword)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows, span)
}

func scanProducts(rows *sql.Rows, span trace.Span) ([]product.Product, error) {
	var products []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	return products, nil
}

// Save inserts when p.ID is zero and replaces the whole record otherwise.
func (s *PostgresStore) Save(ctx context.Context, p product.Product) (product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "store.save",
		trace.WithAttributes(attribute.Int64("product.id", p.ID)),
	)
	defer span.End()

	if p.ID == 0 {
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO products (name, description, category, price, stock, image_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, p.Name, p.Description, p.Category, p.Price, p.Stock, p.ImageURL).Scan(&p.ID)
		if err != nil {
			// Unique constraint violation on the product name.
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return product.Product{}, product.ErrDuplicate
			}
			return product.Product{}, fmt.Errorf("insert product: %w", err)
		}
		span.SetAttributes(attribute.Int64("product.assigned_id", p.ID))
		return p, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, category = $3, price = $4, stock = $5, image_url = $6
		WHERE id = $7
	`, p.Name, p.Description, p.Category, p.Price, p.Stock, p.ImageURL, p.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return product.Product{}, product.ErrDuplicate
		}
		return product.Product{}, fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return product.Product{}, fmt.Errorf("update product: %w", err)
	}
	if affected == 0 {
		return product.Product{}, product.ErrNotFound
	}

	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "store.delete",
		trace.WithAttributes(attribute.Int64("product.id", id)),
	)
	defer span.End()

	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if affected == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.delete_all")
	defer span.End()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}

// Reserve is the single atomic conditional decrement. The database resolves
// concurrent reservations through its own row locking; no client-side
// read-then-write can reproduce this guarantee.
func (s *PostgresStore) Reserve(ctx context.Context, id int64, qty int) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "store.reserve",
		trace.WithAttributes(
			attribute.Int64("product.id", id),
			attribute.Int("reserve.quantity", qty),
		),
	)
	defer span.End()

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1
		WHERE id = $2 AND stock >= $1
	`, qty, id)
	if err != nil {
		return 0, fmt.Errorf("reserve stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reserve stock: %w", err)
	}

	span.SetAttributes(attribute.Int64("reserve.rows_affected", affected))
	return affected, nil
}
