package driver

import (
	"context"
	"time"

	"github.com/Premkambaliya/Hack-The-Winter/internal/metrics"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// Instrument wraps s so every call is timed in the store duration histogram.
// A nil m returns s unchanged.
func Instrument(s store.Store, m *metrics.Metrics) store.Store {
	if m == nil {
		return s
	}
	return &instrumented{next: s, m: m}
}

type instrumented struct {
	next store.Store
	m    *metrics.Metrics
}

func (i *instrumented) CreateOrganization(ctx context.Context, org *model.Organization, entry *model.AuditLog) error {
	defer i.m.ObserveStore("create_organization", time.Now())
	return i.next.CreateOrganization(ctx, org, entry)
}

func (i *instrumented) FindOrganization(ctx context.Context, orgType, id string) (*model.Organization, error) {
	defer i.m.ObserveStore("find_organization", time.Now())
	return i.next.FindOrganization(ctx, orgType, id)
}

func (i *instrumented) FindOrganizationByCode(ctx context.Context, orgType, code string) (*model.Organization, error) {
	defer i.m.ObserveStore("find_organization_by_code", time.Now())
	return i.next.FindOrganizationByCode(ctx, orgType, code)
}

func (i *instrumented) ListOrganizations(ctx context.Context, filter store.OrgFilter, page util.PageRequest) ([]*model.Organization, int64, error) {
	defer i.m.ObserveStore("list_organizations", time.Now())
	return i.next.ListOrganizations(ctx, filter, page)
}

func (i *instrumented) CountOrganizationsByStatus(ctx context.Context, orgType string) (map[string]int64, error) {
	defer i.m.ObserveStore("count_organizations_by_status", time.Now())
	return i.next.CountOrganizationsByStatus(ctx, orgType)
}

func (i *instrumented) CountCodePrefix(ctx context.Context, orgType, prefix string) (int64, error) {
	defer i.m.ObserveStore("count_code_prefix", time.Now())
	return i.next.CountCodePrefix(ctx, orgType, prefix)
}

func (i *instrumented) UpdateOrganization(ctx context.Context, orgType, id string, expected model.Status, patch store.Patch, entry *model.AuditLog) (*model.Organization, error) {
	defer i.m.ObserveStore("update_organization", time.Now())
	return i.next.UpdateOrganization(ctx, orgType, id, expected, patch, entry)
}

func (i *instrumented) DeleteOrganization(ctx context.Context, orgType, id string, entry *model.AuditLog) error {
	defer i.m.ObserveStore("delete_organization", time.Now())
	return i.next.DeleteOrganization(ctx, orgType, id, entry)
}

func (i *instrumented) AppendAudit(ctx context.Context, entry *model.AuditLog) error {
	defer i.m.ObserveStore("append_audit", time.Now())
	return i.next.AppendAudit(ctx, entry)
}

func (i *instrumented) FindAudit(ctx context.Context, id string) (*model.AuditLog, error) {
	defer i.m.ObserveStore("find_audit", time.Now())
	return i.next.FindAudit(ctx, id)
}

func (i *instrumented) ListAudit(ctx context.Context, filter store.AuditFilter, page util.PageRequest) ([]*model.AuditLog, int64, error) {
	defer i.m.ObserveStore("list_audit", time.Now())
	return i.next.ListAudit(ctx, filter, page)
}

func (i *instrumented) AuditStats(ctx context.Context, window util.TimeRange) (*model.AuditStats, error) {
	defer i.m.ObserveStore("audit_stats", time.Now())
	return i.next.AuditStats(ctx, window)
}

func (i *instrumented) RecentAudit(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	defer i.m.ObserveStore("recent_audit", time.Now())
	return i.next.RecentAudit(ctx, limit)
}

func (i *instrumented) ListRequests(ctx context.Context, bloodBankID string) ([]*model.HospitalRequest, error) {
	defer i.m.ObserveStore("list_requests", time.Now())
	return i.next.ListRequests(ctx, bloodBankID)
}

func (i *instrumented) RequestSummary(ctx context.Context) (*model.RequestSummary, error) {
	defer i.m.ObserveStore("request_summary", time.Now())
	return i.next.RequestSummary(ctx)
}

func (i *instrumented) InsertRequest(ctx context.Context, req *model.HospitalRequest) error {
	defer i.m.ObserveStore("insert_request", time.Now())
	return i.next.InsertRequest(ctx, req)
}

func (i *instrumented) Close(ctx context.Context) error {
	return i.next.Close(ctx)
}
