// internal/product/handler_test.go
package product

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce/internal/resilience"
)

// stubService returns canned answers per method.
type stubService struct {
	products []Product
	product  Product
	err      error
}

func (s *stubService) GetAll(ctx context.Context, page, size int) ([]Product, error) {
	return s.products, s.err
}

func (s *stubService) GetByID(ctx context.Context, id int64) (Product, error) {
	return s.product, s.err
}

func (s *stubService) Search(ctx context.Context, keyword string) ([]Product, error) {
	return s.products, s.err
}

func (s *stubService) Create(ctx context.Context, p Product) (Product, error) {
	if s.err != nil {
		return Product{}, s.err
	}
	p.ID = 1
	return p, nil
}

func (s *stubService) UpdateStock(ctx context.Context, id int64, newStock int) (Product, error) {
	if s.err != nil {
		return Product{}, s.err
	}
	p := s.product
	p.Stock = newStock
	return p, nil
}

func (s *stubService) Delete(ctx context.Context, id int64) error {
	return s.err
}

func (s *stubService) SeedDemo(ctx context.Context) error {
	return s.err
}

func serve(t *testing.T, svc Service, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	NewHandler(svc).Routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleListReturnsEmptyArrayNotNull(t *testing.T) {
	rec := serve(t, &stubService{}, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestHandleGet(t *testing.T) {
	svc := &stubService{product: Product{ID: 7, Name: "Laptop", Price: 999.99, Stock: 10}}
	rec := serve(t, svc, http.MethodGet, "/7", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var p Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, svc.product, p)
}

func TestHandleGetInvalidID(t *testing.T) {
	rec := serve(t, &stubService{}, http.MethodGet, "/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreate(t *testing.T) {
	body, _ := json.Marshal(Product{Name: "Laptop", Price: 999.99, Stock: 10})
	rec := serve(t, &stubService{}, http.MethodPost, "/", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/products/1", rec.Header().Get("Location"))
}

func TestHandleUpdateStock(t *testing.T) {
	svc := &stubService{product: Product{ID: 7, Name: "Laptop", Stock: 10}}
	rec := serve(t, svc, http.MethodPut, "/7/stock", []byte(`{"stock": 25}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var p Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 25, p.Stock)
}

func TestHandleDelete(t *testing.T) {
	rec := serve(t, &stubService{}, http.MethodDelete, "/7", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleSearchRequiresKeyword(t *testing.T) {
	rec := serve(t, &stubService{}, http.MethodGet, "/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, &stubService{}, http.MethodGet, "/search?keyword=laptop", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("create: %w", ErrValidation), http.StatusBadRequest},
		{ErrDuplicate, http.StatusConflict},
		{fmt.Errorf("read: %w", resilience.ErrUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("read: %w", resilience.ErrBulkheadFull), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := serve(t, &stubService{err: tc.err}, http.MethodGet, "/7", nil)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}
