// Package events publishes order lifecycle notifications for downstream
// consumers (fulfillment, notifications). Publishing is best-effort: a
// checkout never fails because the broker is down.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderPlacedEvent is emitted after the order service accepts a checkout.
type OrderPlacedEvent struct {
	EventID     string    `json:"event_id"`
	OrderID     string    `json:"order_id"`
	CartID      string    `json:"cart_id"`
	ItemCount   int       `json:"item_count"`
	TotalAmount float64   `json:"total_amount"`
	PlacedAt    time.Time `json:"placed_at"`
}

type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w, logger: logger}
}

func (p *Producer) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order placed event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish order placed event: %w", err)
	}

	p.logger.Info("published order placed event",
		zap.String("order_id", event.OrderID),
		zap.String("event_id", event.EventID))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
