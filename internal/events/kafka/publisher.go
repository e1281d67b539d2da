package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"cred-entry/internal/events"
)

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// Publish keys messages by ledger file so events of one ledger keep their order.
func (p *Publisher) Publish(ctx context.Context, event events.EntryEvent) error {
	msg, err := message(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func message(event events.EntryEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.Ledger),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
			{Key: "entry_id", Value: []byte(strconv.FormatInt(event.EntryID, 10))},
		},
	}, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ events.Publisher = (*Publisher)(nil)
