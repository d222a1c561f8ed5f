// Package events publishes domain events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// TypeOrderPlaced is the event type emitted after a checkout commits.
const TypeOrderPlaced = "order.placed"

var publishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_event_publish_errors_total",
	Help: "Events that could not be published to the broker.",
}, []string{"type"})

// OrderPlacedItem is one line of an OrderPlaced event.
type OrderPlacedItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderPlaced describes a committed order.
type OrderPlaced struct {
	Type          string            `json:"type"`
	OrderCode     string            `json:"order_id"`
	UserID        string            `json:"user_id"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	CoinsUsed     int64             `json:"coins_used"`
	PaymentMethod string            `json:"payment_method"`
	Status        string            `json:"status"`
	Items         []OrderPlacedItem `json:"items"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// Publisher emits domain events.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events to a Kafka topic keyed by order code.
type KafkaPublisher struct {
	writer messageWriter
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher for cfg.Topic on cfg.Brokers.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger) *KafkaPublisher {
	log := logger.With().Str("component", "kafka_publisher").Logger()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Warn().Msgf(msg, args...)
		}),
	}

	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("kafka writer initialized")

	return &KafkaPublisher{writer: writer, logger: log}
}

// PublishOrderPlaced writes event to the topic.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlaced) error {
	event.Type = TypeOrderPlaced

	data, err := json.Marshal(event)
	if err != nil {
		publishErrors.WithLabelValues(TypeOrderPlaced).Inc()
		return fmt.Errorf("failed to marshal %s event: %w", TypeOrderPlaced, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderCode),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeOrderPlaced)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		publishErrors.WithLabelValues(TypeOrderPlaced).Inc()
		return fmt.Errorf("failed to publish %s event: %w", TypeOrderPlaced, err)
	}

	p.logger.Debug().Str("order_code", event.OrderCode).Msg("order event published")
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }

func (NopPublisher) Close() error { return nil }
