package util

import (
	"strings"
	"time"
)

const dateOnly = "2006-01-02"

// TimeRange is an optional [From, To) window; nil bounds are open.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// Empty reports whether neither bound is set.
func (r TimeRange) Empty() bool {
	return r.From == nil && r.To == nil
}

// Contains reports whether t falls within the range.
func (r TimeRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && !t.Before(*r.To) {
		return false
	}
	return true
}

// ParseTimeRange parses the dateFrom/dateTo query values. Both accept RFC3339 or
// YYYY-MM-DD. A date-only dateTo covers the whole day.
func ParseTimeRange(from, to string) (TimeRange, error) {
	var r TimeRange
	if s := strings.TrimSpace(from); s != "" {
		t, _, err := parseDate(s)
		if err != nil {
			return r, NewValidationError("dateFrom must be RFC3339 or YYYY-MM-DD")
		}
		r.From = &t
	}
	if s := strings.TrimSpace(to); s != "" {
		t, isDate, err := parseDate(s)
		if err != nil {
			return r, NewValidationError("dateTo must be RFC3339 or YYYY-MM-DD")
		}
		if isDate {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.Add(time.Millisecond)
		}
		r.To = &t
	}
	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return r, NewValidationError("dateFrom must be before dateTo")
	}
	return r, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateOnly, s)
	return t.UTC(), true, err
}

// NextUpdateTime returns now truncated to milliseconds, or prev+1ms when the clock
// has not advanced past prev. Stored timestamps keep millisecond precision.
func NextUpdateTime(now, prev time.Time) time.Time {
	now = now.UTC().Truncate(time.Millisecond)
	if !now.After(prev) {
		return prev.UTC().Add(time.Millisecond)
	}
	return now
}
