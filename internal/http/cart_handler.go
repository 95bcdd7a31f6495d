package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pharmakart/cart-service/internal/client"
	"github.com/pharmakart/cart-service/internal/domain"
	"github.com/pharmakart/cart-service/internal/pricing"
	"github.com/pharmakart/cart-service/internal/stock"
	"github.com/pharmakart/cart-service/internal/store"
)

// ProductReader is the slice of the catalog client the cart endpoints need.
type ProductReader interface {
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
}

type CartHandler struct {
	carts   *store.Manager
	catalog ProductReader
}

func NewCartHandler(carts *store.Manager, catalog ProductReader) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	CartID    string            `json:"cart_id"`
	Items     []domain.CartLine `json:"items"`
	ItemCount int               `json:"item_count"`
	Summary   pricing.Summary   `json:"summary"`
	Notice    string            `json:"notice,omitempty"`
}

func cartResponse(cs *store.CartStore, notice string) CartResponseDTO {
	lines := cs.Lines()
	return CartResponseDTO{
		CartID:    cs.CartID(),
		Items:     lines,
		ItemCount: cs.ItemCount(),
		Summary:   pricing.Summarize(lines),
		Notice:    notice,
	}
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be a positive integer")
		return
	}

	product, err := h.catalog.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, client.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product does not exist")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not verify product")
		return
	}

	if err := stock.CheckPurchasable(product.Stock); err != nil {
		respondError(w, http.StatusConflict, "out_of_stock", "product is out of stock")
		return
	}

	cs := h.carts.Cart(ctx, cartIDFromContext(ctx))

	current := cs.Quantity(req.ProductID)
	target, _, clampErr := stock.ClampIncrement(current, req.Quantity, product.Stock)
	notice := ""
	if errors.Is(clampErr, stock.ErrStockLimitReached) {
		notice = "stock_limit_reached"
	}

	if delta := target - current; delta > 0 {
		if err := cs.AddItem(ctx, *product, delta); err != nil {
			handleCartStoreError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusCreated, cartResponse(cs, notice))
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cs := h.carts.Cart(r.Context(), cartIDFromContext(r.Context()))
	respondJSON(w, http.StatusOK, cartResponse(cs, ""))
}

// GET /api/v1/cart/count
func (h *CartHandler) GetItemCount(w http.ResponseWriter, r *http.Request) {
	cs := h.carts.Cart(r.Context(), cartIDFromContext(r.Context()))
	respondJSON(w, http.StatusOK, map[string]int{"item_count": cs.ItemCount()})
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cs := h.carts.Cart(ctx, cartIDFromContext(ctx))

	hint := 0
	for _, line := range cs.Lines() {
		if line.ProductID == productID {
			hint = line.StockHint
			break
		}
	}

	target, remove, clampErr := stock.ClampIncrement(0, req.Quantity, hint)
	notice := ""
	if errors.Is(clampErr, stock.ErrStockLimitReached) {
		notice = "stock_limit_reached"
	}

	if remove {
		if err := cs.RemoveItem(ctx, productID); err != nil {
			handleCartStoreError(w, err)
			return
		}
	} else {
		if err := cs.SetQuantity(ctx, productID, target); err != nil {
			handleCartStoreError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, cartResponse(cs, notice))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	cs := h.carts.Cart(ctx, cartIDFromContext(ctx))
	if err := cs.RemoveItem(ctx, productID); err != nil {
		handleCartStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cs, ""))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cs := h.carts.Cart(ctx, cartIDFromContext(ctx))
	if err := cs.Clear(ctx); err != nil {
		handleCartStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cs, ""))
}

func handleCartStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingProductID),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "persistence_error", "failed to save cart")
	}
}
