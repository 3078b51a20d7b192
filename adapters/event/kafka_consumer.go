package event

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one event. A returned error leaves the message
// uncommitted so it is redelivered after a rebalance or restart.
type Handler func(ctx context.Context, e service.ProfileEvent) error

type Consumer struct {
	reader messageReader
	logger logger.Logger
}

func NewConsumer(cfg config.Config, log logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicProfileEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, logger: log}
}

// Run reads until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	c.logger.Info("Worker listening", zap.String("topic", TopicProfileEvents))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			continue
		}

		var e service.ProfileEvent
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			c.logger.Warn("Skipping malformed event", zap.Error(err), zap.ByteString("key", msg.Key))
			c.commit(ctx, msg)
			continue
		}

		log := c.logger.With(zap.String("event_type", e.EventType), zap.String("share_id", e.ShareID))
		if err := handle(ctx, e); err != nil {
			log.Error("Failed to process event", err)
			continue
		}
		c.commit(ctx, msg)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
