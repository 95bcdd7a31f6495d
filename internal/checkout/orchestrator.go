// Package checkout converts the current cart into an order request and
// manages the submit, succeed and fail transitions around the external
// order service.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/cart-service/internal/client"
	"github.com/pharmakart/cart-service/internal/domain"
	"github.com/pharmakart/cart-service/internal/events"
	"github.com/pharmakart/cart-service/internal/pricing"
	"go.uber.org/zap"
)

// Cart is the slice of the cart store the orchestrator consumes: a
// consistent snapshot of the lines, and the ability to clear the cart once
// the order service has accepted them.
type Cart interface {
	CartID() string
	Lines() []domain.CartLine
	Clear(ctx context.Context) error
}

// OrderPlacer is the write contract of the external order service.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req *client.OrderRequest) (*client.OrderResponse, error)
}

// EventPublisher notifies downstream consumers of accepted orders.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event events.OrderPlacedEvent) error
}

// SubmitInput carries the form inputs gathered on the checkout page.
type SubmitInput struct {
	BuyerID         string
	TermsAccepted   bool
	PaymentMethod   string
	ShippingAddress *client.ShippingAddress
	IdempotencyKey  string
}

// Result is handed back to the caller after a successful submission.
type Result struct {
	OrderID string
	Status  Status
}

// Orchestrator guards the submit transition per cart: while one submission
// is in flight for a cart, further attempts are rejected so a single user
// confirmation can never produce two orders.
type Orchestrator struct {
	orders    OrderPlacer
	publisher EventPublisher // optional, nil disables events
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewOrchestrator(orders OrderPlacer, publisher EventPublisher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		orders:    orders,
		publisher: publisher,
		logger:    logger,
		inFlight:  make(map[string]bool),
	}
}

// Submit validates the preconditions, builds an order request from a
// consistent snapshot of the cart and sends it to the order service. On
// acceptance the cart is cleared and the created order id returned. On any
// failure the cart is left untouched so the user can retry without
// re-adding items.
func (o *Orchestrator) Submit(ctx context.Context, cart Cart, input SubmitInput) (*Result, error) {
	cartID := cart.CartID()

	if err := o.begin(cartID); err != nil {
		return nil, err
	}
	defer o.finish(cartID)

	lines := cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if !input.TermsAccepted {
		return nil, ErrTermsNotAccepted
	}
	if input.BuyerID == "" {
		return nil, ErrIdentityRequired
	}

	req := buildOrderRequest(lines, input)
	summary := pricing.Summarize(lines)

	o.logger.Info("submitting order",
		zap.String("cart_id", cartID),
		zap.String("buyer_id", input.BuyerID),
		zap.Int("line_count", len(lines)),
		zap.Float64("subtotal", summary.Subtotal),
		zap.String("status", StatusSubmitting.String()))

	resp, err := o.orders.CreateOrder(ctx, req)
	if err != nil {
		o.logger.Warn("order submission failed",
			zap.String("cart_id", cartID),
			zap.String("status", StatusFailed.String()),
			zap.Error(err))
		return nil, err
	}

	// The order exists server-side from here on; a failed local clear must
	// not turn the outcome into an error.
	if err := cart.Clear(ctx); err != nil {
		o.logger.Error("failed to clear cart after successful checkout",
			zap.String("cart_id", cartID),
			zap.String("order_id", resp.OrderID),
			zap.Error(err))
	}

	// Publishing is best-effort and must not hold up the response (or the
	// per-cart guard) when the broker is slow or down.
	go o.publishOrderPlaced(cartID, resp.OrderID, lines, summary)

	o.logger.Info("order accepted",
		zap.String("cart_id", cartID),
		zap.String("order_id", resp.OrderID),
		zap.String("status", StatusSucceeded.String()))

	return &Result{OrderID: resp.OrderID, Status: StatusSucceeded}, nil
}

func (o *Orchestrator) begin(cartID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[cartID] {
		return ErrCheckoutInFlight
	}
	o.inFlight[cartID] = true
	return nil
}

func (o *Orchestrator) finish(cartID string) {
	o.mu.Lock()
	delete(o.inFlight, cartID)
	o.mu.Unlock()
}

// buildOrderRequest projects the line snapshot into the order service's
// request shape. The shipping address goes along only when complete.
func buildOrderRequest(lines []domain.CartLine, input SubmitInput) *client.OrderRequest {
	items := make([]client.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = client.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
	}

	key := input.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	req := &client.OrderRequest{
		Items:          items,
		PaymentMethod:  input.PaymentMethod,
		IdempotencyKey: key,
	}
	if input.ShippingAddress != nil && input.ShippingAddress.Complete() {
		req.ShippingAddress = input.ShippingAddress
	}
	return req
}

func (o *Orchestrator) publishOrderPlaced(cartID, orderID string, lines []domain.CartLine, summary pricing.Summary) {
	if o.publisher == nil {
		return
	}

	var count int
	for _, line := range lines {
		count += line.Quantity
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := events.OrderPlacedEvent{
		EventID:     uuid.NewString(),
		OrderID:     orderID,
		CartID:      cartID,
		ItemCount:   count,
		TotalAmount: summary.Total,
		PlacedAt:    time.Now(),
	}
	if err := o.publisher.PublishOrderPlaced(ctx, event); err != nil {
		o.logger.Warn("failed to publish order placed event",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}

// StatusForError maps a submission failure onto the attempt lifecycle, for
// callers that surface the state machine.
func StatusForError(err error) Status {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return StatusEmpty
	case errors.Is(err, ErrIdentityRequired):
		return StatusAuthRequired
	case errors.Is(err, ErrCheckoutInFlight):
		return StatusSubmitting
	default:
		return StatusFailed
	}
}
