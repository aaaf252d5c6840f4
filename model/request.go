package model

import "time"

// HospitalRequest is a hospital's request for blood units from a blood bank.
type HospitalRequest struct {
	ID           string    `json:"_id,omitempty" bson:"-" yaml:"-"`
	RequestCode  string    `json:"requestCode" bson:"requestCode" yaml:"requestCode"`
	HospitalCode string    `json:"hospitalCode" bson:"hospitalCode" yaml:"hospitalCode"`
	HospitalName string    `json:"hospitalName" bson:"hospitalName" yaml:"hospitalName"`
	BloodBankID  string    `json:"bloodBankId" bson:"bloodBankId" yaml:"bloodBankId"`
	BloodGroup   string    `json:"bloodGroup" bson:"bloodGroup" yaml:"bloodGroup"`
	Units        int       `json:"units" bson:"units" yaml:"units"`
	Urgency      string    `json:"urgency" bson:"urgency" yaml:"urgency"`
	Status       string    `json:"status" bson:"status" yaml:"status"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt" yaml:"updatedAt"`
}

// Hospital request urgency levels.
const (
	UrgencyNormal    = "NORMAL"
	UrgencyUrgent    = "URGENT"
	UrgencyEmergency = "EMERGENCY"
)

// Hospital request states.
const (
	RequestPending   = "PENDING"
	RequestFulfilled = "FULFILLED"
	RequestCancelled = "CANCELLED"
)

// RequestSummary counts hospital requests by status and urgency.
type RequestSummary struct {
	Total     int64            `json:"total"`
	ByStatus  map[string]int64 `json:"byStatus"`
	ByUrgency map[string]int64 `json:"byUrgency"`
}
