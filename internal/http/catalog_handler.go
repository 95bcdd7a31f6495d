package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pharmakart/cart-service/internal/client"
	"github.com/pharmakart/cart-service/internal/domain"
)

// CatalogReader is the full read contract of the external catalog service.
type CatalogReader interface {
	ListProducts(ctx context.Context, filters client.ProductFilters) (*client.ProductPage, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	ListPharmacies(ctx context.Context, filters client.PharmacyFilters) (*client.PharmacyPage, error)
	GetPharmacyByID(ctx context.Context, id string) (*domain.Pharmacy, error)
}

// CatalogHandler proxies read-only browse requests through to the catalog
// service so pages and the cart share one product snapshot shape.
type CatalogHandler struct {
	catalog CatalogReader
}

func NewCatalogHandler(catalog CatalogReader) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filters := client.ProductFilters{
		Search:     r.URL.Query().Get("search"),
		PharmacyID: r.URL.Query().Get("pharmacy_id"),
		Page:       queryInt(r, "page"),
		PerPage:    queryInt(r, "per_page"),
	}

	page, err := h.catalog.ListProducts(r.Context(), filters)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load products")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GET /api/v1/products/{product_id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProductByID(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		if errors.Is(err, client.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product does not exist")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// GET /api/v1/pharmacies
func (h *CatalogHandler) ListPharmacies(w http.ResponseWriter, r *http.Request) {
	filters := client.PharmacyFilters{
		Search:  r.URL.Query().Get("search"),
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}

	page, err := h.catalog.ListPharmacies(r.Context(), filters)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load pharmacies")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GET /api/v1/pharmacies/{pharmacy_id}
func (h *CatalogHandler) GetPharmacy(w http.ResponseWriter, r *http.Request) {
	pharmacy, err := h.catalog.GetPharmacyByID(r.Context(), chi.URLParam(r, "pharmacy_id"))
	if err != nil {
		if errors.Is(err, client.ErrPharmacyNotFound) {
			respondError(w, http.StatusNotFound, "pharmacy_not_found", "pharmacy does not exist")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load pharmacy")
		return
	}
	respondJSON(w, http.StatusOK, pharmacy)
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
