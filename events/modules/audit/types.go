// Package audit defines the audit event published to Kafka after an
// administrative action commits.
package audit

import (
	"time"

	"github.com/Premkambaliya/Hack-The-Winter/model"
)

// EventTypeAuditRecorded is the event_type of every audit event
const EventTypeAuditRecorded = "admin.audit.recorded"

// AuditRecordedEvent is the envelope published for each committed audit entry.
type AuditRecordedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	Entry model.AuditLog `json:"entry"`
}
