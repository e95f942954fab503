// internal/stream/reservation.go
package stream

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"ecommerce/internal/product"
)

// ReservationHandler consumes payment-success events and applies the
// conditional stock decrement. Every message walks RECEIVED → RESERVING →
// {RESERVED, INSUFFICIENT, ERROR}; no failure class escapes Handle, so one
// product's bad day cannot stall the partition or crash the consumer
// group. The handler holds no cross-message state: correctness under
// concurrency rests on the store's atomic Reserve and on the transport's
// per-product partition ordering.
type ReservationHandler struct {
	store     product.Store
	publisher product.StockNotifier
	logger    *zap.Logger
}

// NewReservationHandler creates a handler applying reservations to store
// and announcing applied ones through publisher.
func NewReservationHandler(store product.Store, publisher product.StockNotifier, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{store: store, publisher: publisher, logger: logger}
}

// Handle processes one payment-success message. It always returns nil:
// each outcome, including malformed payloads and store errors, ends in
// "logged, message handled". The transport's at-least-once redelivery is
// the only retry path, and redelivering a poison message is pointless.
func (h *ReservationHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event product.StockEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("malformed payment event, skipping",
			zap.ByteString("payload", msg.Value),
			zap.Error(err),
		)
		return nil
	}

	if event.ProductID <= 0 || event.Quantity <= 0 {
		h.logger.Error("invalid payment event, skipping",
			zap.Int64("product_id", event.ProductID),
			zap.Int("quantity", event.Quantity),
			zap.String("reason", string(product.ReasonMalformedEvent)),
		)
		return nil
	}

	outcome := h.reserve(ctx, event)
	if !outcome.Success {
		return nil
	}

	// Fire-and-forget: the decrement is committed, the event stream is
	// notification only. A publish failure must not trigger redelivery
	// of an already-applied reservation.
	if err := h.publisher.Publish(ctx, outcome.ProductID, outcome.RequestedQty, product.ActionSold); err != nil {
		h.logger.Error("reservation applied but event not published",
			zap.Int64("product_id", outcome.ProductID),
			zap.Int("quantity", outcome.RequestedQty),
			zap.Error(err),
		)
	}
	return nil
}

func (h *ReservationHandler) reserve(ctx context.Context, event product.StockEvent) product.ReservationOutcome {
	outcome := product.ReservationOutcome{
		ProductID:    event.ProductID,
		RequestedQty: event.Quantity,
	}

	rows, err := h.store.Reserve(ctx, event.ProductID, event.Quantity)
	switch {
	case err != nil:
		outcome.FailureReason = product.ReasonStoreError
		h.logger.Error("stock reservation failed",
			zap.Int64("product_id", event.ProductID),
			zap.Int("quantity", event.Quantity),
			zap.Error(err),
		)
	case rows == 0:
		outcome.FailureReason = product.ReasonInsufficientStock
		h.logger.Warn("insufficient stock for reservation",
			zap.Int64("product_id", event.ProductID),
			zap.Int("quantity", event.Quantity),
		)
	default:
		outcome.Success = true
		h.logger.Info("stock reserved",
			zap.Int64("product_id", event.ProductID),
			zap.Int("quantity", event.Quantity),
		)
	}

	return outcome
}
