// internal/store/guarded.go
package store

import (
	"context"

	"ecommerce/internal/product"
	"ecommerce/internal/resilience"
)

// GuardedStore decorates a product.Store with resilience policies. Reads
// and writes run under independent guards so a degraded write path cannot
// trip the read breaker or starve its bulkhead. Reserve passes through
// unguarded: it is already a single atomic store operation and its
// failure handling belongs to the reservation handler.
type GuardedStore struct {
	inner  product.Store
	reads  *resilience.Guard
	writes *resilience.Guard
}

// NewGuardedStore wraps inner with the given read and write guards.
func NewGuardedStore(inner product.Store, reads, writes *resilience.Guard) *GuardedStore {
	return &GuardedStore{inner: inner, reads: reads, writes: writes}
}

func (s *GuardedStore) FindByID(ctx context.Context, id int64) (product.Product, error) {
	var p product.Product
	err := s.reads.Execute(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.inner.FindByID(ctx, id)
		return err
	})
	return p, err
}

func (s *GuardedStore) FindAll(ctx context.Context, offset, limit int) ([]product.Product, error) {
	var products []product.Product
	err := s.reads.Execute(ctx, func(ctx context.Context) error {
		var err error
		products, err = s.inner.FindAll(ctx, offset, limit)
		return err
	})
	return products, err
}

func (s *GuardedStore) Search(ctx context.Context, keyword string) ([]product.Product, error) {
	var products []product.Product
	err := s.reads.Execute(ctx, func(ctx context.Context) error {
		var err error
		products, err = s.inner.Search(ctx, keyword)
		return err
	})
	return products, err
}

func (s *GuardedStore) Save(ctx context.Context, p product.Product) (product.Product, error) {
	var saved product.Product
	err := s.writes.Execute(ctx, func(ctx context.Context) error {
		var err error
		saved, err = s.inner.Save(ctx, p)
		return err
	})
	return saved, err
}

func (s *GuardedStore) Delete(ctx context.Context, id int64) error {
	return s.writes.Execute(ctx, func(ctx context.Context) error {
		return s.inner.Delete(ctx, id)
	})
}

func (s *GuardedStore) DeleteAll(ctx context.Context) error {
	return s.writes.Execute(ctx, func(ctx context.Context) error {
		return s.inner.DeleteAll(ctx)
	})
}

func (s *GuardedStore) Reserve(ctx context.Context, id int64, qty int) (int64, error) {
	return s.inner.Reserve(ctx, id, qty)
}
