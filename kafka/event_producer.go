package kafka

import (
	"context"
	"encoding/json"

	"runclub-backend/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventProducer publishes event_created messages for the push dispatch
// worker. Publishing is fire-and-forget from the caller's point of view:
// event creation never fails because the broker is down.
type EventProducer struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

func NewEventProducer(brokers []string, topic string, logger *zap.Logger) *EventProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	logger.Info("Event producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return &EventProducer{writer: w, topic: topic, logger: logger}
}

func (p *EventProducer) SendEventCreated(ctx context.Context, msg models.EventCreatedMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	kmsg := kafka.Message{
		Key:   []byte(msg.EventID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, kmsg); err != nil {
		p.logger.Error("Failed to publish event_created",
			zap.String("event_id", msg.EventID),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("Published event_created", zap.String("event_id", msg.EventID))
	return nil
}

func (p *EventProducer) Close() {
	_ = p.writer.Close()
	p.logger.Info("Event producer closed")
}
