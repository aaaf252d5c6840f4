package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// CountEntry is one bucket of a grouped count
type CountEntry struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// BloodGroupUnits is the unit count of one blood group
type BloodGroupUnits struct {
	BloodGroup string `json:"bloodGroup"`
	Units      int    `json:"units"`
}

// countEntries flattens counts into entries, listing order first and then any
// remaining keys alphabetically.
func countEntries(counts map[string]int64, order []string) []CountEntry {
	out := make([]CountEntry, 0, len(counts))
	seen := make(map[string]bool, len(order))
	for _, key := range order {
		seen[key] = true
		out = append(out, CountEntry{Key: key, Count: counts[key]})
	}
	var rest []string
	for key := range counts {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		out = append(out, CountEntry{Key: key, Count: counts[key]})
	}
	return out
}

func statusNames() []string {
	names := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		names[i] = string(s)
	}
	return names
}

// ResolveOverview returns blood bank counts per status
func ResolveOverview(ctx context.Context, svc *services.DashboardService) (map[string]interface{}, error) {
	ov, err := svc.Overview(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"total":    ov.Total,
		"byStatus": countEntries(ov.ByStatus, statusNames()),
	}, nil
}

// ResolveBloodStockSummary returns per-group unit totals across approved banks
func ResolveBloodStockSummary(ctx context.Context, svc *services.DashboardService) (map[string]interface{}, error) {
	sum, err := svc.StockSummary(ctx)
	if err != nil {
		return nil, err
	}
	groups := make([]BloodGroupUnits, 0, len(model.BloodGroups))
	for _, g := range model.BloodGroups {
		groups = append(groups, BloodGroupUnits{BloodGroup: g, Units: sum.ByGroup[g]})
	}
	return map[string]interface{}{
		"bloodBanks": sum.BloodBanks,
		"totalUnits": sum.TotalUnits,
		"byGroup":    groups,
	}, nil
}

// ResolveAuditStats aggregates audit entries between the optional dates
func ResolveAuditStats(ctx context.Context, svc *services.DashboardService, dateFrom, dateTo string) (map[string]interface{}, error) {
	window, err := util.ParseTimeRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	stats, err := svc.AuditStats(ctx, window)
	if err != nil {
		return nil, err
	}
	actions := make([]string, len(model.Actions))
	for i, a := range model.Actions {
		actions[i] = string(a)
	}
	entityTypes := make([]string, len(model.EntityTypes))
	for i, t := range model.EntityTypes {
		entityTypes[i] = string(t)
	}
	return map[string]interface{}{
		"total":        stats.Total,
		"byAction":     countEntries(stats.ByAction, actions),
		"byEntityType": countEntries(stats.ByEntityType, entityTypes),
		"byStatus":     countEntries(stats.ByStatus, []string{model.AuditStatusSuccess, model.AuditStatusFailure}),
		"byRole":       countEntries(stats.ByRole, nil),
		"dateFrom":     timeOrNil(stats.DateFrom),
		"dateTo":       timeOrNil(stats.DateTo),
	}, nil
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// ResolveRecentActivity returns the newest audit entries
func ResolveRecentActivity(ctx context.Context, svc *services.DashboardService, limit int) (*model.RecentActivity, error) {
	return svc.RecentActivity(ctx, limit)
}

// ResolveHospitalRequestSummary counts hospital requests by status and urgency
func ResolveHospitalRequestSummary(ctx context.Context, svc *services.DashboardService) (map[string]interface{}, error) {
	sum, err := svc.RequestSummary(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"total":     sum.Total,
		"byStatus":  countEntries(sum.ByStatus, []string{model.RequestPending, model.RequestFulfilled, model.RequestCancelled}),
		"byUrgency": countEntries(sum.ByUrgency, []string{model.UrgencyNormal, model.UrgencyUrgent, model.UrgencyEmergency}),
	}, nil
}
