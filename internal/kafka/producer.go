package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Producer streams notification events to a single topic.
type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

// Publish writes one event keyed by its reference number.
func (p *Producer) Publish(ctx context.Context, event Event) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Reference),
		Value: msgBytes,
	})
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
