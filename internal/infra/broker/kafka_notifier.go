package broker

import (
	"context"
	"encoding/json"
	"time"

	"heat/internal/lifecycle"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier は遷移通知を topic に流す（キーは注文ID）
type KafkaNotifier struct {
	Writer messageWriter
}

var _ lifecycle.Notifier = (*KafkaNotifier)(nil)

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaNotifier(writer messageWriter) *KafkaNotifier {
	return &KafkaNotifier{Writer: writer}
}

func (p *KafkaNotifier) Notify(ctx context.Context, n lifecycle.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.OrderID),
		Value: payload,
	})
}
