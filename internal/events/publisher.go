// Package events publishes confirmed orders to kafka for downstream
// consumers (kitchen display, loyalty accrual, analytics).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const Topic = "order-confirmed"

// OrderConfirmed is the payload emitted after a successful submission.
type OrderConfirmed struct {
	OrderID          int64           `json:"order_id"`
	ConfirmationCode string          `json:"confirmation_code"`
	SessionID        string          `json:"session_id"`
	OrderType        string          `json:"order_type"`
	Total            decimal.Decimal `json:"total"`
	PointsRedeemed   int             `json:"points_redeemed"`
	PointsEarned     int             `json:"points_earned"`
	ConfirmedAt      time.Time       `json:"confirmed_at"`
}

// Writer is the kafka producer surface the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Publisher struct {
	writer Writer
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

// NewPublisherWithWriter is used by tests and by callers that manage the
// writer themselves.
func NewPublisherWithWriter(w Writer) *Publisher {
	return &Publisher{writer: w}
}

// OrderConfirmed publishes one confirmed order, keyed by session id so
// replays of the same session land on the same partition.
func (p *Publisher) OrderConfirmed(ctx context.Context, evt OrderConfirmed) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal order-confirmed payload: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.SessionID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order-confirmed: %w", err)
	}
	return nil
}

// Close closes the underlying kafka writer when the publisher owns one.
func (p *Publisher) Close() error {
	if w, ok := p.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}
