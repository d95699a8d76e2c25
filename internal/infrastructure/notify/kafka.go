package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"flexemi-backend/internal/domain/notification"
	"flexemi-backend/internal/infrastructure/metrics"

	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaNotifier publishes messages for a downstream mailer, keyed by recipient.
type KafkaNotifier struct {
	w   messageWriter
	log *slog.Logger
}

func NewKafkaNotifier(brokers []string, topic string, log *slog.Logger) *KafkaNotifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaNotifier{w: w, log: log}
}

func (n *KafkaNotifier) Notify(ctx context.Context, msg notification.Message) {
	value, err := json.Marshal(msg)
	if err == nil {
		err = n.w.WriteMessages(ctx, kafkago.Message{
			Key:     []byte(msg.To),
			Value:   value,
			Headers: []kafkago.Header{{Key: "content-type", Value: []byte("application/json")}},
		})
	}
	if err != nil {
		metrics.NotificationsFailed.WithLabelValues("kafka").Inc()
		n.log.ErrorContext(ctx, "kafka: publish failed", "to", msg.To, "subject", msg.Subject, "err", err)
	}
}

func (n *KafkaNotifier) Close() error { return n.w.Close() }
