package bloodbanks

import "github.com/Premkambaliya/Hack-The-Winter/model"

// ReasonRequest is the optional body of suspend and reject.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// StockRequest is the body of a stock replacement.
type StockRequest struct {
	BloodStock model.BloodStock `json:"bloodStock"`
}

// RequestsResponse lists the hospital requests of one blood bank.
type RequestsResponse struct {
	Requests []*model.HospitalRequest `json:"requests"`
	Count    int                      `json:"count"`
}
