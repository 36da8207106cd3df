// Package events publishes order lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
	"github.com/jcmexdev/cafekiosk/internal/pkg/telemetry"
)

// OrderCreated is the payload written for every new order.
type OrderCreated struct {
	OrderID            string    `json:"orderId"`
	Status             string    `json:"status"`
	TotalPrice         int       `json:"totalPrice"`
	RegisteredDateTime time.Time `json:"registeredDateTime"`
	ProductNumbers     []string  `json:"productNumbers"`
	TraceID            string    `json:"traceId,omitempty"`
}

func NewOrderCreated(ctx context.Context, order *domain.Order) OrderCreated {
	numbers := make([]string, len(order.Products))
	for i, p := range order.Products {
		numbers[i] = p.ProductNumber
	}
	return OrderCreated{
		OrderID:            order.ID,
		Status:             string(order.Status),
		TotalPrice:         order.TotalPrice,
		RegisteredDateTime: order.RegisteredDateTime,
		ProductNumbers:     numbers,
		TraceID:            telemetry.ExtractTraceInfo(ctx).TraceID,
	}
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ ports.OrderEventPublisher = (*KafkaPublisher)(nil)

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

// PublishOrderCreated writes the event keyed by order ID so every event of
// one order lands on the same partition.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(NewOrderCreated(ctx, order))
	if err != nil {
		return fmt.Errorf("events: marshal order %q: %w", order.ID, err)
	}

	msg := kafka.Message{Key: []byte(order.ID), Value: data, Time: time.Now().UTC()}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: publish order %q: %w", order.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
