package repository

import (
	"context"

	"xfin/internal/domain/models"
	"xfin/pkg/kafka"
)

// KafkaPublisher emits finished collection jobs keyed by category so events
// for one category stay ordered within a partition.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishJob(ctx context.Context, job models.CollectionJob) error {
	return p.producer.Publish(ctx, p.topic, []byte(job.Category.String()), job)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
