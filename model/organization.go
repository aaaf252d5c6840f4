// Package model defines the data structures for organization management in the blood-bank network.
package model

import (
	"fmt"
	"strings"
	"time"
)

// OrganizationTypeBloodBank is the discriminator value for blood bank records
// in the shared organizations collection.
const OrganizationTypeBloodBank = "bloodbank"

// Status is the lifecycle state of an organization.
type Status string

// Organization lifecycle states.
const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusSuspended Status = "SUSPENDED"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusApproved, StatusPending, StatusRejected, StatusSuspended}

// statusTransitions is the allowed-transition table. A status maps to itself
// where re-applying the same operation is idempotent.
var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected, StatusSuspended},
	StatusApproved:  {StatusApproved, StatusSuspended},
	StatusSuspended: {StatusSuspended, StatusApproved},
	StatusRejected:  {StatusRejected},
}

// ParseStatus normalizes s and reports whether it names a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := statusTransitions[st]
	return st, ok
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition table allows s -> target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// StatusNames returns the enumerated statuses as a comma-separated hint.
func StatusNames() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// BloodGroups are the canonical stock keys, in display order.
var BloodGroups = []string{"O+", "O-", "A+", "A-", "B+", "B-", "AB+", "AB-"}

// IsBloodGroup reports whether g is one of the canonical blood groups.
func IsBloodGroup(g string) bool {
	for _, bg := range BloodGroups {
		if bg == g {
			return true
		}
	}
	return false
}

// BloodStock maps a blood group to its unit count.
type BloodStock map[string]int

// EmptyBloodStock returns a stock with every canonical group at zero.
func EmptyBloodStock() BloodStock {
	stock := make(BloodStock, len(BloodGroups))
	for _, g := range BloodGroups {
		stock[g] = 0
	}
	return stock
}

// Validate checks the stock carries exactly the canonical keys with non-negative counts.
func (b BloodStock) Validate() error {
	if len(b) != len(BloodGroups) {
		return fmt.Errorf("blood stock must contain exactly the groups %s", strings.Join(BloodGroups, ", "))
	}
	for _, g := range BloodGroups {
		units, ok := b[g]
		if !ok {
			return fmt.Errorf("blood stock is missing group %s", g)
		}
		if units < 0 {
			return fmt.Errorf("blood stock for %s cannot be negative", g)
		}
	}
	return nil
}

// Total returns the number of units across all groups.
func (b BloodStock) Total() int {
	total := 0
	for _, units := range b {
		total += units
	}
	return total
}

// Organization is a record in the shared organizations collection.
// ID carries the storage-assigned identifier; each driver maps it to its
// native key.
type Organization struct {
	ID               string     `json:"_id,omitempty" bson:"-"`
	Type             string     `json:"type" bson:"type"`
	OrganizationCode string     `json:"organizationCode" bson:"organizationCode"`
	Name             string     `json:"name" bson:"name"`
	Address          string     `json:"address" bson:"address"`
	City             string     `json:"city" bson:"city"`
	State            string     `json:"state" bson:"state"`
	PinCode          string     `json:"pinCode" bson:"pinCode"`
	ContactPerson    string     `json:"contactPerson" bson:"contactPerson"`
	Email            string     `json:"email" bson:"email"`
	Phone            string     `json:"phone" bson:"phone"`
	LicenseNumber    string     `json:"licenseNumber" bson:"licenseNumber"`
	Status           Status     `json:"status" bson:"status"`
	SuspensionReason string     `json:"suspensionReason,omitempty" bson:"suspensionReason,omitempty"`
	RejectionReason  string     `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	BloodStock       BloodStock `json:"bloodStock,omitempty" bson:"bloodStock,omitempty"`
	CreatedAt        time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// NewBloodBank creates a PENDING blood bank record with normalized contact fields.
func NewBloodBank(code, name, address, city, state, pinCode, contactPerson, email, phone, license string, now time.Time) *Organization {
	return &Organization{
		Type:             OrganizationTypeBloodBank,
		OrganizationCode: code,
		Name:             strings.TrimSpace(name),
		Address:          strings.TrimSpace(address),
		City:             strings.TrimSpace(city),
		State:            strings.TrimSpace(state),
		PinCode:          strings.TrimSpace(pinCode),
		ContactPerson:    strings.TrimSpace(contactPerson),
		Email:            strings.ToLower(strings.TrimSpace(email)),
		Phone:            strings.TrimSpace(phone),
		LicenseNumber:    strings.TrimSpace(license),
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Stock returns the record's stock, zero-filled when the record has none.
func (o *Organization) Stock() BloodStock {
	if len(o.BloodStock) == 0 {
		return EmptyBloodStock()
	}
	stock := EmptyBloodStock()
	for g, units := range o.BloodStock {
		stock[g] = units
	}
	return stock
}

// StockSnapshot is the read-only stock view of a blood bank.
type StockSnapshot struct {
	BloodBankID      string     `json:"bloodBankId"`
	OrganizationCode string     `json:"organizationCode"`
	Name             string     `json:"name"`
	BloodStock       BloodStock `json:"bloodStock"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Organization field names shared by every store driver. JSON and BSON names match.
const (
	FieldStatus           = "status"
	FieldSuspensionReason = "suspensionReason"
	FieldRejectionReason  = "rejectionReason"
	FieldBloodStock       = "bloodStock"
	FieldUpdatedAt        = "updatedAt"
)
