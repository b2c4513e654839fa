package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes events to a Kafka topic. Records are keyed by event kind
// so consumers keep per-kind ordering.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink dials the brokers and returns a sink for the given topic.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Kind),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event %s: %w", event.ID, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	s.client.Close()
	return nil
}
