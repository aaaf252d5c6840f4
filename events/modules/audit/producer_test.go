package audit

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/Premkambaliya/Hack-The-Winter/model"
)

func TestNewProducerKeepsBatchWaitShort(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "admin-audit-events", nil)
	defer p.Close()

	assert.Equal(t, BatchTimeout, p.Writer.BatchTimeout)
	assert.Equal(t, WriteTimeout, p.Writer.WriteTimeout)
	assert.Equal(t, kafka.RequireOne, p.Writer.RequiredAcks)
	assert.Equal(t, "admin-audit-events", p.Writer.Topic)
	assert.False(t, p.Writer.Async)
}

func TestNewEvent(t *testing.T) {
	entry := model.AuditLog{EntityCode: "BB-MUM-001", Action: model.ActionSuspended}
	event := NewEvent(entry)

	assert.Equal(t, EventTypeAuditRecorded, event.EventType)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "v1", event.SchemaVersion)
	assert.Equal(t, entry, event.Entry)
}
