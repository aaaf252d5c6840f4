// Package model - API types for combining models in API requests/responses
package model

import "math"

// Response is the JSON envelope returned by every REST endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Pagination is the paging metadata returned with list results
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes totalPages = ceil(total/limit)
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// BloodBankPage is one page of blood bank records
type BloodBankPage struct {
	BloodBanks []*Organization `json:"bloodBanks"`
	Pagination Pagination      `json:"pagination"`
}

// AuditLogPage is one page of audit entries
type AuditLogPage struct {
	Logs       []*AuditLog `json:"logs"`
	Pagination Pagination  `json:"pagination"`
}

// RecentActivity is the most recent audit entries with their count
type RecentActivity struct {
	Logs  []*AuditLog `json:"logs"`
	Count int         `json:"count"`
}
