// internal/store/memory_test.go
package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"ecommerce/internal/product"
)

func seedProduct(t *testing.T, s *MemoryStore, name string, stock int) product.Product {
	t.Helper()
	p, err := s.Save(context.Background(), product.Product{
		Name:     name,
		Category: "Test",
		Price:    9.99,
		Stock:    stock,
	})
	require.NoError(t, err)
	return p
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	saved := seedProduct(t, s, "Laptop", 10)
	assert.NotZero(t, saved.ID)

	found, err := s.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, found)

	_, err = s.FindByID(ctx, 999)
	assert.ErrorIs(t, err, product.ErrNotFound)

	_, err = s.Save(ctx, product.Product{Name: "Laptop", Stock: 1})
	assert.ErrorIs(t, err, product.ErrDuplicate)

	saved.Stock = 3
	updated, err := s.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)

	require.NoError(t, s.Delete(ctx, saved.ID))
	assert.ErrorIs(t, s.Delete(ctx, saved.ID), product.ErrNotFound)
}

func TestMemoryStoreSearch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedProduct(t, s, "Gaming Laptop", 5)
	seedProduct(t, s, "Wireless Mouse", 5)

	matches, err := s.Search(ctx, "laptop")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Gaming Laptop", matches[0].Name)

	matches, err = s.Search(ctx, "keyboard")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryStoreFindAllPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedProduct(t, s, "A", 1)
	seedProduct(t, s, "B", 1)
	seedProduct(t, s, "C", 1)

	page, err := s.FindAll(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "A", page[0].Name)
	assert.Equal(t, "B", page[1].Name)

	page, err = s.FindAll(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "C", page[0].Name)

	page, err = s.FindAll(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestReserveDecrementsStock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProduct(t, s, "Laptop", 10)

	rows, err := s.Reserve(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	found, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, found.Stock)
}

func TestReserveInsufficientStockLeavesStockUntouched(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProduct(t, s, "Laptop", 3)

	rows, err := s.Reserve(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	found, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Stock)
}

func TestReserveUnknownProduct(t *testing.T) {
	s := NewMemoryStore()

	rows, err := s.Reserve(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestConcurrentReservationsExactlyConsumeStock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProduct(t, s, "Laptop", 10)

	var wg sync.WaitGroup
	applied := make([]int64, 2)
	for i := range applied {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows, err := s.Reserve(ctx, p.ID, 5)
			assert.NoError(t, err)
			applied[i] = rows
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), applied[0])
	assert.Equal(t, int64(1), applied[1])

	found, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.Stock)
}

func TestConcurrentOverDemandNeverOversells(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProduct(t, s, "Laptop", 7)

	// 10 buyers of 2 units each against 7 in stock: at most 3 can apply.
	var wg sync.WaitGroup
	var mu sync.Mutex
	appliedQty := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := s.Reserve(ctx, p.ID, 2)
			assert.NoError(t, err)
			if rows == 1 {
				mu.Lock()
				appliedQty += 2
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	found, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, found.Stock, 0, "stock must never go negative")
	assert.Equal(t, 7-appliedQty, found.Stock)
}

func TestReserveProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s := NewMemoryStore()
		initial := rapid.IntRange(0, 100).Draw(t, "initial")
		p, err := s.Save(ctx, product.Product{Name: "P", Stock: initial})
		if err != nil {
			t.Fatal(err)
		}

		remaining := initial
		for _, qty := range rapid.SliceOfN(rapid.IntRange(1, 20), 1, 30).Draw(t, "reservations") {
			rows, err := s.Reserve(ctx, p.ID, qty)
			if err != nil {
				t.Fatal(err)
			}
			if rows == 1 {
				remaining -= qty
			}
			if remaining < 0 {
				t.Fatalf("oversold: remaining %d after reserving %d", remaining, qty)
			}
		}

		found, err := s.FindByID(ctx, p.ID)
		if err != nil {
			t.Fatal(err)
		}
		if found.Stock != remaining {
			t.Fatalf("stock %d, expected %d", found.Stock, remaining)
		}
	})
}
