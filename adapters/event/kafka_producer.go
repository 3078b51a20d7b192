package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
)

const TopicProfileEvents = "profile.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	writer messageWriter
	logger logger.Logger
}

// NewEventPublisher returns a Kafka publisher, or one that drops events when
// no brokers are configured.
func NewEventPublisher(cfg config.Config, log logger.Logger) service.EventPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("Kafka brokers not configured, profile events are dropped")
		return &nopPublisher{logger: log}
	}
	return NewKafkaProducerClient(cfg, log)
}

// NewKafkaProducerClient writes asynchronously so a slow broker never holds
// up a request; delivery failures are logged from the completion callback.
func NewKafkaProducerClient(cfg config.Config, log logger.Logger) *KafkaProducerClient {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        TopicProfileEvents,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Error("Failed to deliver profile events", err, zap.Int("messages", len(msgs)))
			}
		},
	}
	log.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", TopicProfileEvents))
	return &KafkaProducerClient{writer: writer, logger: log}
}

// PublishProfileEvent keys messages by share ID so events for one profile
// stay ordered.
func (c *KafkaProducerClient) PublishProfileEvent(ctx context.Context, e service.ProfileEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal profile event: %w", err)
	}
	err = c.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.ShareID),
		Value: value,
		Time:  e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to write profile event: %w", err)
	}
	c.logger.Debug("Profile event published", zap.String("event_type", e.EventType), zap.String("share_id", e.ShareID))
	return nil
}

func (c *KafkaProducerClient) Close() error {
	if c.writer == nil {
		return nil
	}
	return c.writer.Close()
}

type nopPublisher struct {
	logger logger.Logger
}

func (p *nopPublisher) PublishProfileEvent(_ context.Context, e service.ProfileEvent) error {
	p.logger.Debug("Dropping profile event", zap.String("event_type", e.EventType), zap.String("share_id", e.ShareID))
	return nil
}
