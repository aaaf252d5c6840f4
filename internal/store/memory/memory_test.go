package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
	base  time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) newBank(code, name, city string, created time.Time) *model.Organization {
	org := model.NewBloodBank(code, name, "addr", city, "Maharashtra", "400001", "Asha",
		fmt.Sprintf("%s@example.org", code), "9876543210", "LIC-"+code, created)
	s.Require().NoError(s.store.CreateOrganization(s.ctx, org, s.entry(model.ActionCreated, code)))
	return org
}

func (s *MemoryStoreSuite) entry(action model.Action, code string) *model.AuditLog {
	return &model.AuditLog{
		EntityType:      model.EntityBloodBank,
		EntityCode:      code,
		Action:          action,
		PerformedBy:     "admin-1",
		PerformedByRole: model.RoleAdmin,
		Status:          model.AuditStatusSuccess,
		Timestamp:       s.base,
	}
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	org := s.newBank("BB-MUM-001", "City Bank", "Mumbai", s.base)
	s.NotEmpty(org.ID)

	found, err := s.store.FindOrganization(s.ctx, model.OrganizationTypeBloodBank, org.ID)
	s.Require().NoError(err)
	s.Equal("City Bank", found.Name)

	byCode, err := s.store.FindOrganizationByCode(s.ctx, model.OrganizationTypeBloodBank, "BB-MUM-001")
	s.Require().NoError(err)
	s.Equal(org.ID, byCode.ID)

	s.Run("scoped by type", func() {
		_, err := s.store.FindOrganization(s.ctx, "hospital", org.ID)
		s.ErrorIs(err, store.ErrNotFound)
	})

	s.Run("audit entry carries the new id", func() {
		logs, total, err := s.store.ListAudit(s.ctx, store.AuditFilter{EntityCode: "BB-MUM-001"}, util.PageRequest{Page: 1, Limit: 10})
		s.Require().NoError(err)
		s.EqualValues(1, total)
		s.Equal(org.ID, logs[0].EntityID)
	})

	s.Run("duplicate code conflicts", func() {
		dup := model.NewBloodBank("BB-MUM-001", "Other", "a", "Mumbai", "MH", "1", "c", "x@y.z", "1", "L", s.base)
		s.ErrorIs(s.store.CreateOrganization(s.ctx, dup, nil), store.ErrConflict)
	})
}

func (s *MemoryStoreSuite) TestListFiltersAndPagination() {
	s.newBank("BB-MUM-001", "Lifeline", "Mumbai", s.base)
	s.newBank("BB-MUM-002", "Red Drop", "Navi Mumbai", s.base.Add(time.Hour))
	s.newBank("BB-PUN-001", "Sahyadri", "Pune", s.base.Add(2*time.Hour))

	all, total, err := s.store.ListOrganizations(s.ctx, store.OrgFilter{Type: model.OrganizationTypeBloodBank}, util.PageRequest{Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Equal([]string{"BB-PUN-001", "BB-MUM-002", "BB-MUM-001"}, codes(all))

	byCity, total, err := s.store.ListOrganizations(s.ctx, store.OrgFilter{Type: model.OrganizationTypeBloodBank, City: "mumbai"}, util.PageRequest{Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(byCity, 2)

	search, total, err := s.store.ListOrganizations(s.ctx, store.OrgFilter{Type: model.OrganizationTypeBloodBank, Search: "red"}, util.PageRequest{Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Equal("BB-MUM-002", search[0].OrganizationCode)

	from := s.base.Add(30 * time.Minute)
	ranged, total, err := s.store.ListOrganizations(s.ctx, store.OrgFilter{Type: model.OrganizationTypeBloodBank, Range: util.TimeRange{From: &from}}, util.PageRequest{Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(ranged, 2)

	page2, total, err := s.store.ListOrganizations(s.ctx, store.OrgFilter{Type: model.OrganizationTypeBloodBank}, util.PageRequest{Page: 2, Limit: 2})
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Equal([]string{"BB-MUM-001"}, codes(page2))

	beyond, total, err := s.store.ListOrganizations(s.ctx, store.OrgFilter{Type: model.OrganizationTypeBloodBank}, util.PageRequest{Page: 5, Limit: 2})
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.NotNil(beyond)
	s.Empty(beyond)

	n, err := s.store.CountCodePrefix(s.ctx, model.OrganizationTypeBloodBank, "BB-MUM-")
	s.Require().NoError(err)
	s.EqualValues(2, n)
}

func (s *MemoryStoreSuite) TestConditionalUpdate() {
	org := s.newBank("BB-MUM-001", "Lifeline", "Mumbai", s.base)
	later := s.base.Add(time.Minute)

	updated, err := s.store.UpdateOrganization(s.ctx, model.OrganizationTypeBloodBank, org.ID, model.StatusPending,
		store.Patch{model.FieldStatus: model.StatusSuspended, model.FieldSuspensionReason: "expired license", model.FieldUpdatedAt: later},
		s.entry(model.ActionSuspended, org.OrganizationCode))
	s.Require().NoError(err)
	s.Equal(model.StatusSuspended, updated.Status)
	s.Equal("expired license", updated.SuspensionReason)
	s.True(later.Equal(updated.UpdatedAt))
	s.Equal("Lifeline", updated.Name)

	s.Run("stale expected status conflicts", func() {
		_, err := s.store.UpdateOrganization(s.ctx, model.OrganizationTypeBloodBank, org.ID, model.StatusPending,
			store.Patch{model.FieldStatus: model.StatusApproved}, nil)
		s.ErrorIs(err, store.ErrConflict)
	})

	s.Run("nil removes a field", func() {
		cleared, err := s.store.UpdateOrganization(s.ctx, model.OrganizationTypeBloodBank, org.ID, model.StatusSuspended,
			store.Patch{model.FieldSuspensionReason: nil}, nil)
		s.Require().NoError(err)
		s.Empty(cleared.SuspensionReason)
	})

	s.Run("unknown id", func() {
		_, err := s.store.UpdateOrganization(s.ctx, model.OrganizationTypeBloodBank, "missing", model.StatusPending, store.Patch{}, nil)
		s.ErrorIs(err, store.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestAuditFailureRollsBack() {
	org := s.newBank("BB-MUM-001", "Lifeline", "Mumbai", s.base)

	s.store.FailNextAudit(errors.New("disk full"))
	_, err := s.store.UpdateOrganization(s.ctx, model.OrganizationTypeBloodBank, org.ID, model.StatusPending,
		store.Patch{model.FieldStatus: model.StatusApproved}, s.entry(model.ActionApproved, org.OrganizationCode))
	s.Require().Error(err)

	found, err := s.store.FindOrganization(s.ctx, model.OrganizationTypeBloodBank, org.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusPending, found.Status)

	_, total, err := s.store.ListAudit(s.ctx, store.AuditFilter{Action: model.ActionApproved}, util.PageRequest{Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Zero(total)
}

func (s *MemoryStoreSuite) TestDelete() {
	org := s.newBank("BB-MUM-001", "Lifeline", "Mumbai", s.base)

	s.Require().NoError(s.store.DeleteOrganization(s.ctx, model.OrganizationTypeBloodBank, org.ID, s.entry(model.ActionDeleted, org.OrganizationCode)))
	_, err := s.store.FindOrganization(s.ctx, model.OrganizationTypeBloodBank, org.ID)
	s.ErrorIs(err, store.ErrNotFound)
	s.ErrorIs(s.store.DeleteOrganization(s.ctx, model.OrganizationTypeBloodBank, org.ID, nil), store.ErrNotFound)
}

func (s *MemoryStoreSuite) TestAuditQueries() {
	for i, action := range []model.Action{model.ActionCreated, model.ActionApproved, model.ActionSuspended} {
		e := s.entry(action, "BB-MUM-001")
		e.Timestamp = s.base.Add(time.Duration(i) * time.Hour)
		s.Require().NoError(s.store.AppendAudit(s.ctx, e))
	}
	login := s.entry(model.ActionLogin, "admin-1")
	login.EntityType = model.EntityUser
	login.PerformedByRole = model.RoleSuperAdmin
	login.Timestamp = s.base.Add(5 * time.Hour)
	s.Require().NoError(s.store.AppendAudit(s.ctx, login))

	recent, err := s.store.RecentAudit(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(model.ActionLogin, recent[0].Action)
	s.Equal(model.ActionSuspended, recent[1].Action)

	found, err := s.store.FindAudit(s.ctx, recent[0].ID)
	s.Require().NoError(err)
	s.Equal(model.EntityUser, found.EntityType)

	_, err = s.store.FindAudit(s.ctx, "nope")
	s.ErrorIs(err, store.ErrNotFound)

	stats, err := s.store.AuditStats(s.ctx, util.TimeRange{})
	s.Require().NoError(err)
	s.EqualValues(4, stats.Total)
	s.EqualValues(3, stats.ByEntityType["BLOODBANK"])
	s.EqualValues(1, stats.ByRole[model.RoleSuperAdmin])
	s.EqualValues(4, stats.ByStatus[model.AuditStatusSuccess])

	to := s.base.Add(90 * time.Minute)
	windowed, err := s.store.AuditStats(s.ctx, util.TimeRange{To: &to})
	s.Require().NoError(err)
	s.EqualValues(2, windowed.Total)
	s.EqualValues(1, windowed.ByAction["APPROVED"])
}

func (s *MemoryStoreSuite) TestRequests() {
	now := s.base
	for i, status := range []string{model.RequestPending, model.RequestFulfilled} {
		s.Require().NoError(s.store.InsertRequest(s.ctx, &model.HospitalRequest{
			RequestCode: fmt.Sprintf("REQ-%d", i), BloodBankID: "bank-1", BloodGroup: "O+", Units: 2,
			Urgency: model.UrgencyUrgent, Status: status, CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	reqs, err := s.store.ListRequests(s.ctx, "bank-1")
	s.Require().NoError(err)
	s.Require().Len(reqs, 2)
	s.Equal("REQ-1", reqs[0].RequestCode)

	none, err := s.store.ListRequests(s.ctx, "bank-2")
	s.Require().NoError(err)
	s.Empty(none)

	sum, err := s.store.RequestSummary(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(2, sum.Total)
	s.EqualValues(2, sum.ByUrgency[model.UrgencyUrgent])
}

func codes(orgs []*model.Organization) []string {
	out := make([]string, len(orgs))
	for i, o := range orgs {
		out[i] = o.OrganizationCode
	}
	return out
}

func (s *MemoryStoreSuite) TestPageBeyondResults() {
	s.newBank("BB-MUM-001", "Lifeline", "Mumbai", s.base)

	items, total, err := s.store.ListOrganizations(s.ctx, store.OrgFilter{Type: model.OrganizationTypeBloodBank},
		util.PageRequest{Page: 4611686018427387905, Limit: 3})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Empty(items)

	items, _, err = s.store.ListOrganizations(s.ctx, store.OrgFilter{Type: model.OrganizationTypeBloodBank},
		util.PageRequest{Page: 1, Limit: math.MaxInt})
	s.Require().NoError(err)
	s.Len(items, 1)
}
