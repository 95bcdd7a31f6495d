package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pharmakart/cart-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetProductByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/products/prod-1", r.URL.Path)
		json.NewEncoder(w).Encode(domain.Product{
			ID: "prod-1", Name: "Paracetamol", Price: 20, DiscountPrice: 15,
			Stock: 30, Images: []string{"p.jpg"}, SKU: "PARA-500",
		})
	}))
	defer srv.Close()

	catalog := NewCatalog(srv.URL, 5*time.Second, zap.NewNop())
	product, err := catalog.GetProductByID(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, "prod-1", product.ID)
	assert.Equal(t, 15.0, product.EffectivePrice())
	assert.Equal(t, 30, product.Stock)
}

func TestGetProductByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	catalog := NewCatalog(srv.URL, 5*time.Second, zap.NewNop())
	_, err := catalog.GetProductByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListProducts_ForwardsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/products", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "aspirin", q.Get("search"))
		require.Equal(t, "ph-1", q.Get("pharmacy_id"))
		require.Equal(t, "2", q.Get("page"))

		json.NewEncoder(w).Encode(ProductPage{
			Products:   []domain.Product{{ID: "prod-1", Name: "Aspirin", Price: 9, Stock: 4}},
			Pagination: Pagination{Page: 2, PerPage: 20, TotalPages: 3, TotalItems: 41},
		})
	}))
	defer srv.Close()

	catalog := NewCatalog(srv.URL, 5*time.Second, zap.NewNop())
	page, err := catalog.ListProducts(context.Background(), ProductFilters{
		Search: "aspirin", PharmacyID: "ph-1", Page: 2,
	})
	require.NoError(t, err)

	require.Len(t, page.Products, 1)
	assert.Equal(t, "Aspirin", page.Products[0].Name)
	assert.Equal(t, 41, page.Pagination.TotalItems)
}

func TestListPharmacies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/pharmacies", r.URL.Path)
		json.NewEncoder(w).Encode(PharmacyPage{
			Pharmacies: []domain.Pharmacy{{ID: "ph-1", Name: "City Pharmacy"}},
			Pagination: Pagination{Page: 1, TotalItems: 1},
		})
	}))
	defer srv.Close()

	catalog := NewCatalog(srv.URL, 5*time.Second, zap.NewNop())
	page, err := catalog.ListPharmacies(context.Background(), PharmacyFilters{})
	require.NoError(t, err)
	require.Len(t, page.Pharmacies, 1)
	assert.Equal(t, "City Pharmacy", page.Pharmacies[0].Name)
}

func TestGetPharmacyByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	catalog := NewCatalog(srv.URL, 5*time.Second, zap.NewNop())
	_, err := catalog.GetPharmacyByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrPharmacyNotFound)
}

func TestCatalog_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	catalog := NewCatalog(srv.URL, 5*time.Second, zap.NewNop())
	_, err := catalog.ListProducts(context.Background(), ProductFilters{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProductNotFound)
}
