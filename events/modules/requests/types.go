// Package requests handles hospital blood-request events consumed from Kafka.
package requests

import (
	"time"

	"github.com/Premkambaliya/Hack-The-Winter/model"
)

// EventTypeRequestCreated is the event_type emitted by the hospital service
const EventTypeRequestCreated = "hospital.request.created"

// HospitalRequestCreatedEvent is published when a hospital raises a blood request.
type HospitalRequestCreatedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	Request model.HospitalRequest `json:"request"`
}
