package util

import (
	"math"
	"strconv"
	"strings"
)

// Default page sizes.
const (
	DefaultPage          = 1
	DefaultOrgPageSize   = 20
	DefaultAuditPageSize = 50
	DefaultRecentLimit   = 20
)

// MaxOffset bounds (page-1)*limit so every driver receives a representable skip.
const MaxOffset = math.MaxInt32

// PageRequest is a validated page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of records to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePositiveInt parses an optional query value that must be an integer >= 1.
// An empty value yields def.
func ParsePositiveInt(name, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, NewValidationError("%s must be a positive integer", name)
	}
	return n, nil
}

// ParsePageRequest validates the page and limit query values. maxLimit <= 0 leaves
// limit unbounded; otherwise larger limits are clamped to it.
func ParsePageRequest(page, limit string, defLimit, maxLimit int) (PageRequest, error) {
	p, err := ParsePositiveInt("page", page, DefaultPage)
	if err != nil {
		return PageRequest{}, err
	}
	l, err := ParsePositiveInt("limit", limit, defLimit)
	if err != nil {
		return PageRequest{}, err
	}
	if maxLimit > 0 && l > maxLimit {
		l = maxLimit
	}
	if p-1 > MaxOffset/l {
		return PageRequest{}, NewValidationError("page is out of range for limit %d", l)
	}
	return PageRequest{Page: p, Limit: l}, nil
}
