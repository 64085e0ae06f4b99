package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/tcollier/portfolio-report/internal/models"
)

// Producer publishes run lifecycle events to Kafka. A nil Producer is a
// valid no-op, used when no brokers are configured.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer, or nil when brokers is empty
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 {
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishSnapshotRecorded publishes an event after a snapshot is persisted
func (p *Producer) PublishSnapshotRecorded(ctx context.Context, snap *models.Snapshot, firstRun bool) error {
	if p == nil {
		return nil
	}

	event := models.SnapshotEvent{
		EventID:       uuid.New().String(),
		EventType:     models.EventSnapshotRecorded,
		RunID:         snap.RunID.String(),
		Date:          snap.Date.Format("2006-01-02"),
		TotalValue:    snap.Summary.TotalValue,
		PositionCount: snap.Summary.PositionCount,
		FirstRun:      firstRun,
		Timestamp:     time.Now(),
	}
	return p.publish(ctx, event.Date, event)
}

// PublishReportSent publishes an event after the report email is delivered
func (p *Producer) PublishReportSent(ctx context.Context, snap *models.Snapshot, firstRun bool) error {
	if p == nil {
		return nil
	}

	event := models.SnapshotEvent{
		EventID:       uuid.New().String(),
		EventType:     models.EventReportSent,
		RunID:         snap.RunID.String(),
		Date:          snap.Date.Format("2006-01-02"),
		TotalValue:    snap.Summary.TotalValue,
		PositionCount: snap.Summary.PositionCount,
		FirstRun:      firstRun,
		Timestamp:     time.Now(),
	}
	return p.publish(ctx, event.Date, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.SnapshotEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
