package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes each message as a JSON event keyed by kind.
type KafkaNotifier struct {
	w   messageWriter
	now func() time.Time
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaNotifier{w: w, now: time.Now}
}

type kafkaEvent struct {
	Kind       Kind           `json:"kind"`
	ToEmail    string         `json:"toEmail,omitempty"`
	ToName     string         `json:"toName,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt int64          `json:"occurredAt"`
}

func (k *KafkaNotifier) Notify(ctx context.Context, msg Message) error {
	value, err := json.Marshal(kafkaEvent{
		Kind:       msg.Kind,
		ToEmail:    msg.ToEmail,
		ToName:     msg.ToName,
		Data:       msg.Data,
		OccurredAt: k.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("kafka encode: %w", err)
	}
	if err := k.w.WriteMessages(ctx, kafka.Message{Key: []byte(msg.Kind), Value: value}); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.w.Close()
}
