package repository

import (
	"context"
	"fmt"

	"StockCast/internal/domain/models"
	"StockCast/pkg/kafka"
	"StockCast/pkg/logger"
)

// KafkaEventPublisher emits job lifecycle events to a kafka topic,
// keyed by request id so one job's events stay ordered.
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
	log      *logger.Logger
}

func NewKafkaEventPublisher(producer *kafka.Producer, topic string, log *logger.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic, log: log}
}

func (p *KafkaEventPublisher) PublishJobEvent(ctx context.Context, event *models.JobEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(event.RequestID), event); err != nil {
		return fmt.Errorf("publish job event %s/%s: %w", event.RequestID, event.Status, err)
	}
	p.log.Debug("job event published",
		logger.String("request_id", event.RequestID),
		logger.String("status", string(event.Status)))
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// NopEventPublisher is used when kafka is disabled.
type NopEventPublisher struct{}

func (NopEventPublisher) PublishJobEvent(context.Context, *models.JobEvent) error { return nil }
func (NopEventPublisher) Close() error                                            { return nil }
