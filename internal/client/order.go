package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ErrOrderUnreachable covers transport failures and an open circuit breaker:
// the order service never answered, so the outcome of the order is unknown
// to us and the cart must stay intact for a retry.
var ErrOrderUnreachable = errors.New("order service unreachable")

// OrderRejectedError is a definitive refusal from the order service, for
// example an authoritative stock conflict or validation error. The service
// re-validates stock and prices itself; the client-side snapshot is never
// assumed to still be valid at submission time.
type OrderRejectedError struct {
	StatusCode int
	Message    string
}

func (e *OrderRejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("order rejected: %s", e.Message)
	}
	return fmt.Sprintf("order rejected with status %d", e.StatusCode)
}

type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ShippingAddress is only attached to an order when every required field is
// present; a partially filled address is omitted entirely.
type ShippingAddress struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

func (a ShippingAddress) Complete() bool {
	return a.Line1 != "" && a.City != "" && a.State != "" && a.PostalCode != ""
}

type OrderRequest struct {
	Items           []OrderItem      `json:"items"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	PaymentMethod   string           `json:"payment_method"`
	IdempotencyKey  string           `json:"idempotency_key"`
}

type OrderResponse struct {
	OrderID string `json:"order_id"`
}

type orderErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Orders is the write client for the external order service. Calls run
// through a circuit breaker; a definitive rejection counts as a successful
// round trip so only transport failures trip the breaker.
type Orders struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*OrderResponse]
	logger     *zap.Logger
}

func NewOrders(baseURL string, timeout time.Duration, logger *zap.Logger) *Orders {
	settings := gobreaker.Settings{
		Name:    "order-service",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var rejected *OrderRejectedError
			return errors.As(err, &rejected)
		},
	}

	return &Orders{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[*OrderResponse](settings),
		logger:  logger,
	}
}

// CreateOrder submits the order request. The returned error is either an
// *OrderRejectedError carrying the service's reason, or wraps
// ErrOrderUnreachable.
func (o *Orders) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	resp, err := o.breaker.Execute(func() (*OrderResponse, error) {
		return o.createOrder(ctx, req)
	})
	if err != nil {
		var rejected *OrderRejectedError
		if errors.As(err, &rejected) {
			return nil, err
		}
		o.logger.Warn("order service unreachable", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrOrderUnreachable, err)
	}
	return resp, nil
}

func (o *Orders) createOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &OrderRejectedError{
			StatusCode: resp.StatusCode,
			Message:    rejectionMessage(resp.Body),
		}
	}

	var orderResp OrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	return &orderResp, nil
}

// rejectionMessage pulls the service-provided reason out of an error body
// when one is present; the caller falls back to a generic notice otherwise.
func rejectionMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var body orderErrorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
