// Package events announces completed checkouts to the rest of the platform.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/fjod/go_storefront/internal/domain"
)

// CheckoutCompleted is the envelope written after an order is placed and the
// cart is cleared.
type CheckoutCompleted struct {
	OrderID     int64                 `json:"order_id"`
	UserID      int64                 `json:"user_id"`
	Items       []domain.CartLineItem `json:"items"`
	Subtotal    int64                 `json:"subtotal"`
	ShippingFee int64                 `json:"shipping_fee"`
	Total       int64                 `json:"total"`
	Payment     domain.PaymentMethod  `json:"payment_method"`
	CompletedAt time.Time             `json:"completed_at"`
}

type Publisher interface {
	PublishCheckoutCompleted(ctx context.Context, ev CheckoutCompleted) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{
		writer: w,
		log:    log.With().Str("component", "events").Logger(),
	}
}

func (p *KafkaPublisher) PublishCheckoutCompleted(ctx context.Context, ev CheckoutCompleted) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal checkout event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish checkout event: %w", err)
	}

	p.log.Info().Int64("order_id", ev.OrderID).Msg("checkout event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishCheckoutCompleted(context.Context, CheckoutCompleted) error {
	return nil
}
