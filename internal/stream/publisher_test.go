// internal/stream/publisher_test.go
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ecommerce/internal/product"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishWritesKeyedEvent(t *testing.T) {
	w := &fakeWriter{}
	p := NewStockPublisher(w, zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), 42, 3, product.ActionSold))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "42", string(msg.Key), "key routes all events for one product to one partition")

	var event product.StockEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, int64(42), event.ProductID)
	assert.Equal(t, 3, event.Quantity)
	assert.Equal(t, product.ActionSold, event.Action)
	assert.NotZero(t, event.EventID, "every event gets a fresh id")
}

func TestPublishReturnsWriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewStockPublisher(w, zap.NewNop())

	err := p.Publish(context.Background(), 42, 3, product.ActionSold)
	assert.Error(t, err)
}

func TestPublisherClose(t *testing.T) {
	w := &fakeWriter{}
	p := NewStockPublisher(w, zap.NewNop())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
