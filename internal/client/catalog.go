// Package client holds the HTTP clients for the external catalog and order
// services. The cart core only ever reads from the catalog and writes to the
// order service; neither client mutates catalog state.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pharmakart/cart-service/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrPharmacyNotFound = errors.New("pharmacy not found")
)

// Pagination mirrors the catalog's paging envelope.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

type ProductPage struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type PharmacyPage struct {
	Pharmacies []domain.Pharmacy `json:"pharmacies"`
	Pagination Pagination        `json:"pagination"`
}

// ProductFilters narrows a product listing.
type ProductFilters struct {
	Search     string
	PharmacyID string
	Page       int
	PerPage    int
}

// PharmacyFilters narrows a pharmacy listing.
type PharmacyFilters struct {
	Search  string
	Page    int
	PerPage int
}

// Catalog is the read-only client for the external catalog service.
// GetProductByID collapses concurrent lookups for the same product with
// singleflight.
type Catalog struct {
	baseURL    string
	httpClient *http.Client
	sfg        singleflight.Group
	logger     *zap.Logger
}

func NewCatalog(baseURL string, timeout time.Duration, logger *zap.Logger) *Catalog {
	return &Catalog{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

func (c *Catalog) ListProducts(ctx context.Context, filters ProductFilters) (*ProductPage, error) {
	q := url.Values{}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.PharmacyID != "" {
		q.Set("pharmacy_id", filters.PharmacyID)
	}
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(filters.PerPage))
	}

	var page ProductPage
	if err := c.getJSON(ctx, "/api/v1/products", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Catalog) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	v, err, _ := c.sfg.Do("product:"+id, func() (interface{}, error) {
		var product domain.Product
		if err := c.getJSON(ctx, "/api/v1/products/"+url.PathEscape(id), nil, &product); err != nil {
			if errors.Is(err, errNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		return &product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (c *Catalog) ListPharmacies(ctx context.Context, filters PharmacyFilters) (*PharmacyPage, error) {
	q := url.Values{}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(filters.PerPage))
	}

	var page PharmacyPage
	if err := c.getJSON(ctx, "/api/v1/pharmacies", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Catalog) GetPharmacyByID(ctx context.Context, id string) (*domain.Pharmacy, error) {
	var pharmacy domain.Pharmacy
	if err := c.getJSON(ctx, "/api/v1/pharmacies/"+url.PathEscape(id), nil, &pharmacy); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, ErrPharmacyNotFound
		}
		return nil, err
	}
	return &pharmacy, nil
}

var errNotFound = errors.New("not found")

func (c *Catalog) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("catalog returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}
