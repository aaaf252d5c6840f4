package services

import (
	"context"

	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// stockScanPageSize is the page size used when summing stock across banks.
const stockScanPageSize = 500

// Overview counts blood banks per status.
type Overview struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
}

// StockSummary totals units per blood group across approved banks.
type StockSummary struct {
	BloodBanks int              `json:"bloodBanks"`
	TotalUnits int              `json:"totalUnits"`
	ByGroup    model.BloodStock `json:"byGroup"`
}

// DashboardService serves the read-only dashboard aggregates.
type DashboardService struct {
	common
	store BloodBankStore
	audit *AuditService
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(s BloodBankStore, audit *AuditService, opts ...Option) *DashboardService {
	return &DashboardService{common: applyOptions(opts), store: s, audit: audit}
}

// Overview counts blood banks per status; every status is present.
func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	counts, err := s.store.CountOrganizationsByStatus(ctx, model.OrganizationTypeBloodBank)
	if err != nil {
		return nil, util.NewInternalError("Failed to count blood banks", err)
	}
	out := &Overview{ByStatus: make(map[string]int64, len(model.Statuses))}
	for _, st := range model.Statuses {
		out.ByStatus[string(st)] = counts[string(st)]
		out.Total += counts[string(st)]
	}
	return out, nil
}

// StockSummary sums stock across approved blood banks.
func (s *DashboardService) StockSummary(ctx context.Context) (*StockSummary, error) {
	sum := &StockSummary{ByGroup: model.EmptyBloodStock()}
	filter := store.OrgFilter{Type: model.OrganizationTypeBloodBank, Status: model.StatusApproved}

	for page := 1; ; page++ {
		banks, total, err := s.store.ListOrganizations(ctx, filter, util.PageRequest{Page: page, Limit: stockScanPageSize})
		if err != nil {
			return nil, util.NewInternalError("Failed to load blood stock", err)
		}
		for _, bank := range banks {
			sum.BloodBanks++
			for group, units := range bank.Stock() {
				sum.ByGroup[group] += units
				sum.TotalUnits += units
			}
		}
		if len(banks) == 0 || int64(page*stockScanPageSize) >= total {
			break
		}
	}
	return sum, nil
}

// RequestSummary counts hospital requests by status and urgency.
func (s *DashboardService) RequestSummary(ctx context.Context) (*model.RequestSummary, error) {
	sum, err := s.store.RequestSummary(ctx)
	if err != nil {
		return nil, util.NewInternalError("Failed to summarize hospital requests", err)
	}
	return sum, nil
}

// AuditStats delegates to the audit service.
func (s *DashboardService) AuditStats(ctx context.Context, window util.TimeRange) (*model.AuditStats, error) {
	return s.audit.GetStats(ctx, window)
}

// RecentActivity delegates to the audit service.
func (s *DashboardService) RecentActivity(ctx context.Context, limit int) (*model.RecentActivity, error) {
	return s.audit.GetRecentActivity(ctx, limit)
}
