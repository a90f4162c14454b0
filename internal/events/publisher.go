// Package events publishes finished refresh-run summaries to Kafka for
// downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"service-rates/internal"
)

// KafkaSummaryPublisher writes one JSON message per finished refresh run,
// keyed by run id so replays of the same run land in the same partition.
type KafkaSummaryPublisher struct {
	writer *kafka.Writer
}

func NewKafkaSummaryPublisher(brokers []string, topic string) *KafkaSummaryPublisher {
	return &KafkaSummaryPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *KafkaSummaryPublisher) PublishSummary(ctx context.Context, summary internal.RefreshSummary) error {
	value, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(summary.RunID),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("write summary message: %w", err)
	}
	return nil
}

func (p *KafkaSummaryPublisher) Close() error { return p.writer.Close() }
