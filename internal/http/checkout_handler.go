package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pharmakart/cart-service/internal/checkout"
	"github.com/pharmakart/cart-service/internal/client"
	"github.com/pharmakart/cart-service/internal/stock"
	"github.com/pharmakart/cart-service/internal/store"
)

// CheckoutSubmitter is the slice of the orchestrator the handler consumes.
type CheckoutSubmitter interface {
	Submit(ctx context.Context, cart checkout.Cart, input checkout.SubmitInput) (*checkout.Result, error)
}

type CheckoutHandler struct {
	carts    *store.Manager
	checkout CheckoutSubmitter
	catalog  ProductReader

	// where empty-cart checkouts are redirected to browse
	browseURL string
}

func NewCheckoutHandler(carts *store.Manager, submitter CheckoutSubmitter, catalog ProductReader) *CheckoutHandler {
	return &CheckoutHandler{
		carts:     carts,
		checkout:  submitter,
		catalog:   catalog,
		browseURL: "/api/v1/products",
	}
}

type ShippingAddressDTO struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

type SubmitCheckoutRequestDTO struct {
	TermsAccepted   bool                `json:"terms_accepted"`
	PaymentMethod   string              `json:"payment_method"`
	ShippingAddress *ShippingAddressDTO `json:"shipping_address,omitempty"`
	IdempotencyKey  string              `json:"idempotency_key,omitempty"`
}

type BuyNowRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	SubmitCheckoutRequestDTO
}

type CheckoutResponseDTO struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmitCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cs := h.carts.Cart(ctx, cartIDFromContext(ctx))
	h.submit(w, r, cs, req)
}

// POST /api/v1/checkout/buy-now
//
// Buy-now routes a single product straight through the cart to checkout. It
// is gated by the same zero-stock check as add-to-cart.
func (h *CheckoutHandler) BuyNow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BuyNowRequestDTO
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

	// A buy-now is an immediate purchase, so a quantity over the known stock
	// is rejected outright rather than clamped and submitted short.
	current := cs.Quantity(req.ProductID)
	target, _, clampErr := stock.ClampIncrement(current, req.Quantity, product.Stock)
	if clampErr != nil {
		respondError(w, http.StatusConflict, "stock_limit_reached", "requested quantity exceeds available stock")
		return
	}
	if delta := target - current; delta > 0 {
		if err := cs.AddItem(ctx, *product, delta); err != nil {
			handleCartStoreError(w, err)
			return
		}
	}

	h.submit(w, r, cs, req.SubmitCheckoutRequestDTO)
}

func (h *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request, cs *store.CartStore, req SubmitCheckoutRequestDTO) {
	input := checkout.SubmitInput{
		BuyerID:        r.Header.Get(buyerHeader),
		TermsAccepted:  req.TermsAccepted,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.ShippingAddress != nil {
		input.ShippingAddress = &client.ShippingAddress{
			Line1:      req.ShippingAddress.Line1,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
		}
	}

	result, err := h.checkout.Submit(r.Context(), cs, input)
	if err != nil {
		h.handleSubmitError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID: result.OrderID,
		Status:  result.Status.String(),
	})
}

func (h *CheckoutHandler) handleSubmitError(w http.ResponseWriter, err error) {
	var rejected *client.OrderRejectedError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		w.Header().Set("Location", h.browseURL)
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty, add products before checkout")
	case errors.Is(err, checkout.ErrTermsNotAccepted):
		respondError(w, http.StatusUnprocessableEntity, "terms_not_accepted", "terms and conditions must be accepted")
	case errors.Is(err, checkout.ErrIdentityRequired):
		respondError(w, http.StatusUnauthorized, "identity_required", "sign in to complete checkout")
	case errors.Is(err, checkout.ErrCheckoutInFlight):
		respondError(w, http.StatusConflict, "checkout_in_progress", "a checkout is already in progress for this cart")
	case errors.As(err, &rejected):
		message := rejected.Message
		if message == "" {
			message = "the order could not be placed"
		}
		respondError(w, http.StatusUnprocessableEntity, "order_rejected", message)
	case errors.Is(err, client.ErrOrderUnreachable):
		respondError(w, http.StatusServiceUnavailable, "order_service_unavailable", "order service is unavailable, please try again")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "checkout failed")
	}
}
