package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Premkambaliya/Hack-The-Winter/internal/store/memory"
	"github.com/Premkambaliya/Hack-The-Winter/model"
)

func TestDashboardService(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	audit := NewAuditService(st, nil)
	banks := NewBloodBankService(st, audit)
	dash := NewDashboardService(st, audit)
	actor := model.Actor{ID: "admin", Role: model.RoleAdmin}

	stock := model.EmptyBloodStock()
	stock["A+"] = 5
	stock["O-"] = 2

	var ids []string
	for _, name := range []string{"one", "two", "three"} {
		org, err := banks.Create(ctx, CreateInput{
			Name: name, City: "Delhi", State: "Delhi", Email: name + "@bank.in",
			Phone: "011", LicenseNumber: "L-" + name, BloodStock: stock,
		}, actor)
		require.NoError(t, err)
		ids = append(ids, org.ID)
	}
	_, err := banks.Activate(ctx, ids[0], ActivateOptions{}, actor)
	require.NoError(t, err)
	_, err = banks.Activate(ctx, ids[1], ActivateOptions{}, actor)
	require.NoError(t, err)
	_, err = banks.Suspend(ctx, ids[2], "expired license", actor)
	require.NoError(t, err)

	t.Run("overview has every status", func(t *testing.T) {
		ov, err := dash.Overview(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, ov.Total)
		assert.EqualValues(t, 2, ov.ByStatus["APPROVED"])
		assert.EqualValues(t, 1, ov.ByStatus["SUSPENDED"])
		assert.Contains(t, ov.ByStatus, "REJECTED")
		assert.EqualValues(t, 0, ov.ByStatus["PENDING"])
	})

	t.Run("stock sums approved banks", func(t *testing.T) {
		sum, err := dash.StockSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, sum.BloodBanks)
		assert.Equal(t, 14, sum.TotalUnits)
		assert.Equal(t, 10, sum.ByGroup["A+"])
		assert.Equal(t, 0, sum.ByGroup["AB-"])
	})

	t.Run("request summary", func(t *testing.T) {
		require.NoError(t, st.InsertRequest(ctx, &model.HospitalRequest{
			RequestCode: "R1", BloodBankID: ids[0], BloodGroup: "A+", Units: 1,
			Urgency: model.UrgencyEmergency, Status: model.RequestPending, CreatedAt: time.Now(),
		}))
		sum, err := dash.RequestSummary(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, sum.Total)
		assert.EqualValues(t, 1, sum.ByUrgency[model.UrgencyEmergency])
	})

	t.Run("recent activity", func(t *testing.T) {
		recent, err := dash.RecentActivity(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 6, recent.Count)
	})
}
