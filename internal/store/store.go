// Package store defines the record store contracts shared by the ArangoDB, MongoDB
// and in-memory drivers.
package store

import (
	"context"
	"errors"

	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// Sentinel errors returned by every driver.
var (
	// ErrNotFound means no record matched the id (or the id was malformed).
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a conditional write lost to a concurrent change.
	ErrConflict = errors.New("record was modified concurrently")
)

// Patch is a set of top-level field assignments keyed by stored field name.
// A nil value removes the field.
type Patch map[string]interface{}

// OrgFilter holds the optional organization list filters. Zero values are omitted.
type OrgFilter struct {
	Type   string
	Status model.Status
	City   string
	State  string
	Search string
	Range  util.TimeRange
}

// AuditFilter holds the optional audit list filters. Zero values are omitted.
type AuditFilter struct {
	EntityType      model.EntityType
	Action          model.Action
	PerformedBy     string
	PerformedByRole string
	Status          string
	EntityCode      string
	Range           util.TimeRange
}

// OrganizationStore persists organization records. Every mutating call takes the
// audit entry describing it and commits both together.
type OrganizationStore interface {
	CreateOrganization(ctx context.Context, org *model.Organization, entry *model.AuditLog) error
	FindOrganization(ctx context.Context, orgType, id string) (*model.Organization, error)
	FindOrganizationByCode(ctx context.Context, orgType, code string) (*model.Organization, error)
	ListOrganizations(ctx context.Context, filter OrgFilter, page util.PageRequest) ([]*model.Organization, int64, error)
	CountOrganizationsByStatus(ctx context.Context, orgType string) (map[string]int64, error)
	CountCodePrefix(ctx context.Context, orgType, prefix string) (int64, error)
	// UpdateOrganization applies patch when the stored status still equals expected.
	UpdateOrganization(ctx context.Context, orgType, id string, expected model.Status, patch Patch, entry *model.AuditLog) (*model.Organization, error)
	DeleteOrganization(ctx context.Context, orgType, id string, entry *model.AuditLog) error
}

// AuditStore persists audit entries. Entries are never updated or deleted.
type AuditStore interface {
	AppendAudit(ctx context.Context, entry *model.AuditLog) error
	FindAudit(ctx context.Context, id string) (*model.AuditLog, error)
	ListAudit(ctx context.Context, filter AuditFilter, page util.PageRequest) ([]*model.AuditLog, int64, error)
	AuditStats(ctx context.Context, window util.TimeRange) (*model.AuditStats, error)
	RecentAudit(ctx context.Context, limit int) ([]*model.AuditLog, error)
}

// RequestStore reads hospital blood requests.
type RequestStore interface {
	ListRequests(ctx context.Context, bloodBankID string) ([]*model.HospitalRequest, error)
	RequestSummary(ctx context.Context) (*model.RequestSummary, error)
	InsertRequest(ctx context.Context, req *model.HospitalRequest) error
}

// Store is the full record store a driver provides.
type Store interface {
	OrganizationStore
	AuditStore
	RequestStore
	Close(ctx context.Context) error
}

// SearchFields are the organization fields matched by a free-text search.
var SearchFields = []string{"name", "email", "organizationCode", "city", "phone"}
