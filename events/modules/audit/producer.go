package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Premkambaliya/Hack-The-Winter/model"
)

// Writer timings. Each audit event is written alone; the batch wait stays well
// under the kafka-go default of one second.
const (
	BatchTimeout = 5 * time.Millisecond
	WriteTimeout = 2 * time.Second
)

// Producer sends committed audit entries to Kafka
type Producer struct {
	Writer *kafka.Writer
}

// NewProducer initializes a Kafka writer for audit events. transport may be nil
// for the default plaintext transport.
func NewProducer(brokers []string, topic string, transport kafka.RoundTripper) *Producer {
	return &Producer{
		Writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			Transport:              transport,
			BatchTimeout:           BatchTimeout,
			WriteTimeout:           WriteTimeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// NewEvent wraps an audit entry in the event envelope
func NewEvent(entry model.AuditLog) AuditRecordedEvent {
	return AuditRecordedEvent{
		EventType:     EventTypeAuditRecorded,
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",
		Entry:         entry,
	}
}

// PublishAuditRecorded sends the event, keyed by entity code so one entity's
// history stays on one partition.
func (p *Producer) PublishAuditRecorded(ctx context.Context, entry *model.AuditLog) error {
	payload, err := json.Marshal(NewEvent(*entry))
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(entry.EntityCode),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *Producer) Close() error {
	return p.Writer.Close()
}
