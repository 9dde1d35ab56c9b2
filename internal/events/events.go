package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pizzeria-be/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const TopicOrderPlaced = "order.placed"

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

// messageWriter is the slice of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer     messageWriter
	maxElapsed time.Duration
}

// NewKafkaPublisher writes to the given brokers. The topic travels on each
// message so one writer serves every event type.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
		maxElapsed: 10 * time.Second,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{Topic: topic, Key: []byte(key), Value: payload}
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "events"),
		zap.String("topic", topic),
		zap.String("key", key),
	)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = p.maxElapsed

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		return p.writer.WriteMessages(ctx, msg)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		log.Error("event publish failed", zap.Int("attempts", attempt), zap.Error(err))
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	log.Debug("event published", zap.Int("attempts", attempt))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	logger.FromCtx(ctx).Debug("event dropped, no broker configured", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (NopPublisher) Close() error { return nil }

// New picks the Kafka publisher when brokers are configured.
func New(brokers []string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers)
}
