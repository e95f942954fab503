// internal/stream/consumer.go
package stream

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageFetcher is the slice of *kafka.Reader the consumer needs.
type messageFetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageHandler processes one message. Errors are logged by the consumer;
// the message is committed either way, because redelivery of a poison
// message would only repeat the same failure.
type MessageHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// ConsumerConfig is the explicit wiring of one consumer-group loop.
type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topic   string
}

// NewReader builds a consumer-group reader from the config.
func NewReader(cfg ConsumerConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topic:   cfg.Topic,
	})
}

// Consumer owns a fetch/handle/commit loop over one topic. Messages on
// one partition are processed strictly in order; the transport keys the
// partition by product id, which is the ordering the reservation pipeline
// relies on.
type Consumer struct {
	fetcher messageFetcher
	handler MessageHandler
	logger  *zap.Logger
}

// NewConsumer creates a consumer feeding fetched messages to handler.
func NewConsumer(fetcher messageFetcher, handler MessageHandler, logger *zap.Logger) *Consumer {
	return &Consumer{fetcher: fetcher, handler: handler, logger: logger}
}

// Run blocks until ctx is cancelled. A message being handled when
// cancellation arrives is finished and committed before Run returns, so
// an applied reservation is never left unacknowledged by a shutdown.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started")
	for {
		msg, err := c.fetcher.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer shutting down")
				return nil
			}
			c.logger.Error("failed to fetch message, retrying", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		if err := c.handler.Handle(ctx, msg); err != nil {
			c.logger.Error("message handler failed",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		// Commit with a fresh context so a shutdown cannot leave an
		// already-applied message uncommitted.
		commitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.fetcher.CommitMessages(commitCtx, msg); err != nil {
			c.logger.Error("failed to commit message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.fetcher.Close()
}
