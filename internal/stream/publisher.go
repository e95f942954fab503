// internal/stream/publisher.go
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"ecommerce/internal/product"
)

// messageWriter is the slice of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a kafka writer for the given topic. The Hash balancer
// routes each message by key, so all events for one product land on one
// partition and stay ordered.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
}

// StockPublisher emits stock-change events keyed by product id. The store
// is the source of truth; the event stream is a best-effort notification
// channel, so a publish failure is logged but never undoes the mutation
// that produced it.
type StockPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewStockPublisher creates a publisher writing to the given writer.
func NewStockPublisher(writer messageWriter, logger *zap.Logger) *StockPublisher {
	return &StockPublisher{writer: writer, logger: logger}
}

// Publish sends one stock event. The meaning of quantity follows the
// action: resulting stock for CREATE and UPDATE, zero for DELETE, the
// reserved amount for SOLD.
func (p *StockPublisher) Publish(ctx context.Context, productID int64, quantity int, action string) error {
	event := product.StockEvent{
		EventID:   uuid.New(),
		ProductID: productID,
		Quantity:  quantity,
		Action:    action,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal stock event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(productID, 10)),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish stock event",
			zap.Int64("product_id", productID),
			zap.String("action", action),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
		return fmt.Errorf("publish stock event: %w", err)
	}

	p.logger.Info("published stock event",
		zap.Int64("product_id", productID),
		zap.String("action", action),
		zap.Int("quantity", quantity),
		zap.String("event_id", event.EventID.String()),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *StockPublisher) Close() error {
	return p.writer.Close()
}
