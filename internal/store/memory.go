// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ecommerce/internal/product"
)

// MemoryStore is the in-memory reference implementation of product.Store.
// All state is confined behind one mutex, so Reserve has the same
// all-or-nothing semantics as the SQL conditional update.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	m      map[int64]product.Product
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		m:      make(map[int64]product.Product),
	}
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) FindAll(ctx context.Context, offset, limit int) ([]product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return append([]product.Product(nil), all[offset:end]...), nil
}

func (s *MemoryStore) Search(ctx context.Context, keyword string) ([]product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(keyword)
	var matches []product.Product
	for _, p := range s.sorted() {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (s *MemoryStore) Save(ctx context.Context, p product.Product) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		for _, existing := range s.m {
			if existing.Name == p.Name {
				return product.Product{}, product.ErrDuplicate
			}
		}
		p.ID = s.nextID
		s.nextID++
		s.m[p.ID] = p
		return p, nil
	}

	if _, ok := s.m[p.ID]; !ok {
		return product.Product{}, product.ErrNotFound
	}
	for _, existing := range s.m {
		if existing.ID != p.ID && existing.Name == p.Name {
			return product.Product{}, product.ErrDuplicate
		}
	}
	s.m[p.ID] = p
	return p, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return product.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *MemoryStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = make(map[int64]product.Product)
	return nil
}

// Reserve performs the conditional decrement under the store lock. The
// check and the write are one critical section, never observable apart.
func (s *MemoryStore) Reserve(ctx context.Context, id int64, qty int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok || p.Stock < qty {
		return 0, nil
	}
	p.Stock -= qty
	s.m[id] = p
	return 1, nil
}

func (s *MemoryStore) sorted() []product.Product {
	all := make([]product.Product, 0, len(s.m))
	for _, p := range s.m {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
