package model

import (
	"strings"
	"time"
)

// EntityType classifies the entity an audit entry is about.
type EntityType string

// Audited entity types.
const (
	EntityOrganization EntityType = "ORGANIZATION"
	EntityEmergency    EntityType = "EMERGENCY"
	EntityBloodStock   EntityType = "BLOOD_STOCK"
	EntityAlert        EntityType = "ALERT"
	EntityHospital     EntityType = "HOSPITAL"
	EntityBloodBank    EntityType = "BLOODBANK"
	EntityNGO          EntityType = "NGO"
	EntityUser         EntityType = "USER"
	EntityApproval     EntityType = "APPROVAL"
)

// EntityTypes lists every audited entity type.
var EntityTypes = []EntityType{
	EntityOrganization, EntityEmergency, EntityBloodStock, EntityAlert, EntityHospital,
	EntityBloodBank, EntityNGO, EntityUser, EntityApproval,
}

// Action is the administrative action an audit entry records.
type Action string

// Audited actions.
const (
	ActionCreated   Action = "CREATED"
	ActionUpdated   Action = "UPDATED"
	ActionApproved  Action = "APPROVED"
	ActionRejected  Action = "REJECTED"
	ActionSuspended Action = "SUSPENDED"
	ActionActivated Action = "ACTIVATED"
	ActionDeleted   Action = "DELETED"
	ActionAccessed  Action = "ACCESSED"
	ActionLogin     Action = "LOGIN"
	ActionLogout    Action = "LOGOUT"
)

// Actions lists every audited action.
var Actions = []Action{
	ActionCreated, ActionUpdated, ActionApproved, ActionRejected, ActionSuspended,
	ActionActivated, ActionDeleted, ActionAccessed, ActionLogin, ActionLogout,
}

// Outcome statuses of an audit entry.
const (
	AuditStatusSuccess = "SUCCESS"
	AuditStatusFailure = "FAILURE"
)

// Valid reports whether t is an enumerated entity type.
func (t EntityType) Valid() bool {
	for _, et := range EntityTypes {
		if et == t {
			return true
		}
	}
	return false
}

// Valid reports whether a is an enumerated action.
func (a Action) Valid() bool {
	for _, act := range Actions {
		if act == a {
			return true
		}
	}
	return false
}

// EntityTypeNames returns the entity types as a comma-separated hint.
func EntityTypeNames() string {
	names := make([]string, len(EntityTypes))
	for i, t := range EntityTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// ActionNames returns the actions as a comma-separated hint.
func ActionNames() string {
	names := make([]string, len(Actions))
	for i, a := range Actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// AuditLog is an immutable record of one administrative action against one entity.
type AuditLog struct {
	ID              string                 `json:"_id,omitempty" bson:"-"`
	EntityType      EntityType             `json:"entityType" bson:"entityType"`
	EntityCode      string                 `json:"entityCode" bson:"entityCode"`
	EntityID        string                 `json:"entityId,omitempty" bson:"entityId,omitempty"`
	Action          Action                 `json:"action" bson:"action"`
	PerformedBy     string                 `json:"performedBy" bson:"performedBy"`
	PerformedByRole string                 `json:"performedByRole" bson:"performedByRole"`
	Status          string                 `json:"status" bson:"status"`
	Timestamp       time.Time              `json:"timestamp" bson:"timestamp"`
	Details         map[string]interface{} `json:"details,omitempty" bson:"details,omitempty"`
}

// Actor identifies who performed an administrative action.
type Actor struct {
	ID   string
	Role string
}

// AuditStats aggregates audit entry counts within an optional window.
type AuditStats struct {
	Total        int64            `json:"total"`
	ByAction     map[string]int64 `json:"byAction"`
	ByEntityType map[string]int64 `json:"byEntityType"`
	ByStatus     map[string]int64 `json:"byStatus"`
	ByRole       map[string]int64 `json:"byRole"`
	DateFrom     *time.Time       `json:"dateFrom,omitempty"`
	DateTo       *time.Time       `json:"dateTo,omitempty"`
}

// NewAuditStats returns stats with initialized count maps.
func NewAuditStats() *AuditStats {
	return &AuditStats{
		ByAction:     map[string]int64{},
		ByEntityType: map[string]int64{},
		ByStatus:     map[string]int64{},
		ByRole:       map[string]int64{},
	}
}
