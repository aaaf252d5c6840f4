package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// PublishTimeout bounds how long a committed action waits for the event stream.
const PublishTimeout = 2 * time.Second

// AuditPublisher forwards committed audit entries to the event stream.
type AuditPublisher interface {
	PublishAuditRecorded(ctx context.Context, entry *model.AuditLog) error
}

// AuditService records and queries the administrative audit trail.
type AuditService struct {
	common
	store     store.AuditStore
	publisher AuditPublisher
}

// NewAuditService constructs an AuditService. publisher may be nil.
func NewAuditService(s store.AuditStore, publisher AuditPublisher, opts ...Option) *AuditService {
	return &AuditService{common: applyOptions(opts), store: s, publisher: publisher}
}

// NewEntry builds a SUCCESS entry stamped with the current time.
func (s *AuditService) NewEntry(entityType model.EntityType, entityCode string, action model.Action, actor model.Actor, details map[string]interface{}) *model.AuditLog {
	return &model.AuditLog{
		EntityType:      entityType,
		EntityCode:      entityCode,
		Action:          action,
		PerformedBy:     actor.ID,
		PerformedByRole: actor.Role,
		Status:          model.AuditStatusSuccess,
		Timestamp:       s.stamp(),
		Details:         details,
	}
}

// Prepare builds an entry with NewEntry and validates it, so a mutation is refused
// before any write when its audit entry would be incomplete.
func (s *AuditService) Prepare(entityType model.EntityType, entityCode string, action model.Action, actor model.Actor, details map[string]interface{}) (*model.AuditLog, error) {
	entry := s.NewEntry(entityType, entityCode, action, actor, details)
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ParseEntityType normalizes raw and checks it against the enumeration.
func ParseEntityType(raw string) (model.EntityType, error) {
	t := model.EntityType(strings.ToUpper(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", util.NewValidationError("Invalid entity type %q. Valid types: %s", raw, model.EntityTypeNames())
	}
	return t, nil
}

// ParseAction normalizes raw and checks it against the enumeration.
func ParseAction(raw string) (model.Action, error) {
	a := model.Action(strings.ToUpper(strings.TrimSpace(raw)))
	if !a.Valid() {
		return "", util.NewValidationError("Invalid action %q. Valid actions: %s", raw, model.ActionNames())
	}
	return a, nil
}

func validateEntry(entry *model.AuditLog) error {
	if !entry.EntityType.Valid() {
		return util.NewValidationError("Invalid entity type %q. Valid types: %s", entry.EntityType, model.EntityTypeNames())
	}
	if !entry.Action.Valid() {
		return util.NewValidationError("Invalid action %q. Valid actions: %s", entry.Action, model.ActionNames())
	}
	if util.IsEmpty(entry.EntityCode) {
		return util.NewValidationError("entityCode is required")
	}
	if util.IsEmpty(entry.PerformedBy) {
		return util.NewValidationError("performedBy is required")
	}
	switch entry.Status {
	case model.AuditStatusSuccess, model.AuditStatusFailure:
	default:
		return util.NewValidationError("audit status must be %s or %s", model.AuditStatusSuccess, model.AuditStatusFailure)
	}
	return nil
}

func (s *AuditService) fillDefaults(entry *model.AuditLog) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.stamp()
	}
	if entry.Status == "" {
		entry.Status = model.AuditStatusSuccess
	}
}

// Record appends a standalone entry, such as a login, and publishes it.
func (s *AuditService) Record(ctx context.Context, entry *model.AuditLog) error {
	s.fillDefaults(entry)
	if err := validateEntry(entry); err != nil {
		return err
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		return util.NewInternalError("Failed to record audit entry", err)
	}
	s.Committed(ctx, entry)
	return nil
}

// Committed counts and publishes an entry the store has already written. A
// publish failure is logged and never undoes the write.
func (s *AuditService) Committed(ctx context.Context, entry *model.AuditLog) {
	s.metrics.IncrementAudit(string(entry.EntityType), string(entry.Action))
	if s.publisher == nil {
		return
	}
	// The write is already committed, so a client disconnect must not cancel the publish.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()
	if err := s.publisher.PublishAuditRecorded(pubCtx, entry); err != nil {
		s.metrics.IncrementPublishFailure()
		s.logger.Warn("Failed to publish audit event",
			zap.String("entityCode", entry.EntityCode),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
	}
}

// ValidateFilter checks the enumerated filter values before any query runs.
func ValidateFilter(f *store.AuditFilter) error {
	if f.EntityType != "" {
		t, err := ParseEntityType(string(f.EntityType))
		if err != nil {
			return err
		}
		f.EntityType = t
	}
	if f.Action != "" {
		a, err := ParseAction(string(f.Action))
		if err != nil {
			return err
		}
		f.Action = a
	}
	if f.Status != "" {
		f.Status = strings.ToUpper(strings.TrimSpace(f.Status))
		if f.Status != model.AuditStatusSuccess && f.Status != model.AuditStatusFailure {
			return util.NewValidationError("status must be %s or %s", model.AuditStatusSuccess, model.AuditStatusFailure)
		}
	}
	return nil
}

// FindAll lists entries matching the filter, newest first.
func (s *AuditService) FindAll(ctx context.Context, filter store.AuditFilter, page util.PageRequest) (*model.AuditLogPage, error) {
	if err := ValidateFilter(&filter); err != nil {
		return nil, err
	}
	logs, total, err := s.store.ListAudit(ctx, filter, page)
	if err != nil {
		return nil, util.NewInternalError("Failed to fetch audit logs", err)
	}
	return &model.AuditLogPage{Logs: logs, Pagination: model.NewPagination(page.Page, page.Limit, total)}, nil
}

// FindByID returns a single entry.
func (s *AuditService) FindByID(ctx context.Context, id string) (*model.AuditLog, error) {
	entry, err := s.store.FindAudit(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, util.NewNotFoundError("Audit log not found")
	}
	if err != nil {
		return nil, util.NewInternalError("Failed to fetch audit log", err)
	}
	return entry, nil
}

// FindByEntityType lists entries for one entity type.
func (s *AuditService) FindByEntityType(ctx context.Context, raw string, page util.PageRequest) (*model.AuditLogPage, error) {
	t, err := ParseEntityType(raw)
	if err != nil {
		return nil, err
	}
	return s.FindAll(ctx, store.AuditFilter{EntityType: t}, page)
}

// FindByAction lists entries for one action.
func (s *AuditService) FindByAction(ctx context.Context, raw string, page util.PageRequest) (*model.AuditLogPage, error) {
	a, err := ParseAction(raw)
	if err != nil {
		return nil, err
	}
	return s.FindAll(ctx, store.AuditFilter{Action: a}, page)
}

// FindByEntityCode returns the history of one entity.
func (s *AuditService) FindByEntityCode(ctx context.Context, code string, page util.PageRequest) (*model.AuditLogPage, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, util.NewValidationError("entityCode is required")
	}
	return s.FindAll(ctx, store.AuditFilter{EntityCode: code}, page)
}

// GetStats aggregates entries within the optional window.
func (s *AuditService) GetStats(ctx context.Context, window util.TimeRange) (*model.AuditStats, error) {
	stats, err := s.store.AuditStats(ctx, window)
	if err != nil {
		return nil, util.NewInternalError("Failed to fetch audit statistics", err)
	}
	stats.DateFrom = window.From
	stats.DateTo = window.To
	return stats, nil
}

// GetRecentActivity returns the newest limit entries.
func (s *AuditService) GetRecentActivity(ctx context.Context, limit int) (*model.RecentActivity, error) {
	if limit < 1 {
		limit = util.DefaultRecentLimit
	}
	logs, err := s.store.RecentAudit(ctx, limit)
	if err != nil {
		return nil, util.NewInternalError("Failed to fetch recent activity", err)
	}
	return &model.RecentActivity{Logs: logs, Count: len(logs)}, nil
}
