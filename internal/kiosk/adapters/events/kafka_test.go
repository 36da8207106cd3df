package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func testOrder(t *testing.T) *domain.Order {
	t.Helper()
	p, err := domain.NewProduct("001", domain.ProductTypeHandmade, domain.SellingStatusSelling, "아메리카노", 4000)
	require.NoError(t, err)
	return domain.NewOrder([]domain.Product{*p, *p}, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
}

func TestKafkaPublisher_PublishOrderCreated(t *testing.T) {
	w := &recordingWriter{}
	pub := &KafkaPublisher{writer: w}
	order := testOrder(t)

	require.NoError(t, pub.PublishOrderCreated(context.Background(), order))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, order.ID, string(w.msgs[0].Key))

	var event OrderCreated
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &event))
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, "INIT", event.Status)
	assert.Equal(t, 8000, event.TotalPrice)
	assert.Equal(t, []string{"001", "001"}, event.ProductNumbers)
	assert.Empty(t, event.TraceID)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	pub := &KafkaPublisher{writer: &recordingWriter{err: errors.New("no brokers")}}

	err := pub.PublishOrderCreated(context.Background(), testOrder(t))
	assert.ErrorContains(t, err, "no brokers")
}
