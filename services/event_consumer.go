package services

import (
	"context"
	"encoding/json"
	"fmt"

	"runclub-backend/models"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventConsumer reads event_created messages and hands them to the push
// dispatcher. Decoupling dispatch from the creating HTTP request through the
// queue is what guarantees event creation is never blocked by fan-out.
type EventConsumer struct {
	reader     *kafkago.Reader
	dispatcher DispatchService
	logger     *zap.Logger
	topic      string
}

func NewEventConsumer(brokers []string, topic, groupID string, dispatcher DispatchService, logger *zap.Logger) *EventConsumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	logger.Info("Event consumer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
		zap.String("group_id", groupID),
	)
	return &EventConsumer{reader: r, dispatcher: dispatcher, logger: logger, topic: topic}
}

func (c *EventConsumer) Start(ctx context.Context) {
	c.logger.Info("Starting event consumer", zap.String("topic", c.topic))
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Event consumer stopping")
				return
			}
			c.logger.Warn("Error reading event message", zap.Error(err))
			continue
		}

		var msg models.EventCreatedMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			c.logger.Warn("Invalid event message JSON", zap.Error(err), zap.String("payload", string(m.Value)))
			continue
		}

		push := PushMessage{
			Title: "New event: " + msg.Title,
			Body:  fmt.Sprintf("%s - %s", msg.Location, msg.StartsAt.Format("Mon Jan 2, 15:04")),
			URL:   "/events/" + msg.EventID,
		}

		if _, err := c.dispatcher.Dispatch(ctx, push); err != nil {
			// Total store-read failure only; partial delivery failures are
			// already absorbed into the dispatch counts.
			c.logger.Error("Dispatch failed for event", zap.String("event_id", msg.EventID), zap.Error(err))
		}
	}
}

func (c *EventConsumer) Close() {
	_ = c.reader.Close()
}
