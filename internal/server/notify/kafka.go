package notify

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Writer defines the subset of kafka.Writer we need.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender writes each message to a topic keyed by recipient, so all
// mail for one address lands on one partition in order.
type KafkaSender struct {
	writer Writer
}

func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	return NewKafkaSenderWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	})
}

func NewKafkaSenderWithWriter(w Writer) *KafkaSender {
	return &KafkaSender{writer: w}
}

func (s *KafkaSender) Send(ctx context.Context, m Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(m.To),
		Value: b,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(m.Kind)},
		},
	})
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
