package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/segmentio/kafka-go"
)

// Consumer reads notification events for the notify worker.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader}
}

// Start consumes until ctx is cancelled, invoking handler per event. Handler
// errors are logged, not retried; delivery is best effort end to end.
func (c *Consumer) Start(ctx context.Context, handler func(Event)) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("kafka: error reading message: %v", err)
			continue
		}

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("kafka: failed to unmarshal event: %v", err)
			continue
		}
		handler(event)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
