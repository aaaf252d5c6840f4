package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusSuspended, true},
		{StatusPending, StatusRejected, true},
		{StatusApproved, StatusApproved, true},
		{StatusApproved, StatusSuspended, true},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusSuspended, StatusApproved, true},
		{StatusSuspended, StatusSuspended, true},
		{StatusSuspended, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusSuspended, false},
		{StatusRejected, StatusRejected, true},
		{Status("ARCHIVED"), StatusApproved, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" approved ")
	require.True(t, ok)
	assert.Equal(t, StatusApproved, st)

	_, ok = ParseStatus("ACTIVE")
	assert.False(t, ok)
	assert.Equal(t, "APPROVED, PENDING, REJECTED, SUSPENDED", StatusNames())
}

func TestBloodStock(t *testing.T) {
	empty := EmptyBloodStock()
	require.NoError(t, empty.Validate())
	assert.Len(t, empty, 8)
	assert.Zero(t, empty.Total())

	stock := EmptyBloodStock()
	stock["O+"] = 12
	stock["AB-"] = 3
	require.NoError(t, stock.Validate())
	assert.Equal(t, 15, stock.Total())

	stock["O+"] = -1
	assert.Error(t, stock.Validate())

	partial := BloodStock{"O+": 1}
	assert.Error(t, partial.Validate())

	extra := EmptyBloodStock()
	delete(extra, "B-")
	extra["C+"] = 1
	assert.Error(t, extra.Validate())
}

func TestOrganizationStockZeroFill(t *testing.T) {
	org := NewBloodBank("BB-MUM-001", " City Bank ", "1 Main Rd", "Mumbai", "MH", "400001",
		"Asha", " Admin@CityBank.ORG ", "9999999999", "LIC-1", time.Now())

	assert.Equal(t, StatusPending, org.Status)
	assert.Equal(t, "admin@citybank.org", org.Email)
	assert.Equal(t, "City Bank", org.Name)
	assert.Equal(t, OrganizationTypeBloodBank, org.Type)
	assert.Equal(t, EmptyBloodStock(), org.Stock())

	org.BloodStock = BloodStock{"A+": 4}
	stock := org.Stock()
	assert.Len(t, stock, 8)
	assert.Equal(t, 4, stock["A+"])
	assert.Equal(t, 0, stock["O-"])
}

func TestAuditEnumerations(t *testing.T) {
	assert.True(t, EntityBloodBank.Valid())
	assert.False(t, EntityType("DONOR").Valid())
	assert.True(t, ActionSuspended.Valid())
	assert.False(t, Action("PURGED").Valid())
	assert.Contains(t, ActionNames(), "ACTIVATED")
	assert.Contains(t, EntityTypeNames(), "BLOOD_STOCK")
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, 3, NewPagination(1, 20, 41).TotalPages)
	assert.Equal(t, 2, NewPagination(1, 20, 40).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 20, 0).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 0, 10).TotalPages)
}
