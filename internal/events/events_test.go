package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func sampleEvent() OrderPlaced {
	return OrderPlaced{
		OrderCode:     "ORD01JTEST",
		UserID:        "8d7e2f0a-8a55-4e4b-9c1a-3a4b5c6d7e8f",
		TotalAmount:   decimal.RequireFromString("23050"),
		CoinsUsed:     0,
		PaymentMethod: "cod",
		Status:        "Processing",
		Items: []OrderPlacedItem{
			{Name: "Phone", UnitPrice: decimal.RequireFromString("12000"), Quantity: 2},
		},
		OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_PublishOrderPlaced(t *testing.T) {
	writer := new(MockWriter)
	p := &KafkaPublisher{writer: writer, logger: zerolog.Nop()}

	var sent []kafka.Message
	writer.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]kafka.Message) }).
		Return(nil)

	require.NoError(t, p.PublishOrderPlaced(context.Background(), sampleEvent()))

	require.Len(t, sent, 1)
	assert.Equal(t, "ORD01JTEST", string(sent[0].Key))
	assert.Equal(t, TypeOrderPlaced, string(sent[0].Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(sent[0].Value, &decoded))
	assert.Equal(t, TypeOrderPlaced, decoded["type"])
	assert.Equal(t, "ORD01JTEST", decoded["order_id"])
	assert.Equal(t, "23050", decoded["total_amount"])
	assert.Len(t, decoded["items"], 1)

	writer.AssertExpectations(t)
}

func TestKafkaPublisher_WriteFailure(t *testing.T) {
	writer := new(MockWriter)
	p := &KafkaPublisher{writer: writer, logger: zerolog.Nop()}

	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	err := p.PublishOrderPlaced(context.Background(), sampleEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := new(MockWriter)
	p := &KafkaPublisher{writer: writer, logger: zerolog.Nop()}
	writer.On("Close").Return(nil)

	assert.NoError(t, p.Close())
	writer.AssertExpectations(t)
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "orders"}, zerolog.Nop())

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "orders", w.Topic)
	assert.NoError(t, p.Close())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}

	assert.NoError(t, p.PublishOrderPlaced(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}
