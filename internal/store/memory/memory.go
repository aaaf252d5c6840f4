// Package memory is the in-process record store used by tests and by
// STORE_DRIVER=memory. A single mutex guards every collection, so an
// organization write and its audit entry commit together.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
	"github.com/google/uuid"
)

type orgRecord struct {
	seq int64
	org *model.Organization
}

type auditRecord struct {
	seq   int64
	entry *model.AuditLog
}

// Store is an in-memory implementation of store.Store
type Store struct {
	mu       sync.RWMutex
	seq      int64
	orgs     map[string]*orgRecord
	audit    map[string]*auditRecord
	requests []*model.HospitalRequest

	// failAudit makes the next audit write fail; used to exercise rollback.
	failAudit error
}

var _ store.Store = (*Store)(nil)

// New returns an empty store
func New() *Store {
	return &Store{
		orgs:  make(map[string]*orgRecord),
		audit: make(map[string]*auditRecord),
	}
}

// FailNextAudit makes the next audit write return err, rolling back the
// organization write it accompanies.
func (s *Store) FailNextAudit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAudit = err
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// appendAuditLocked must be called with mu held.
func (s *Store) appendAuditLocked(entry *model.AuditLog) error {
	if s.failAudit != nil {
		err := s.failAudit
		s.failAudit = nil
		return err
	}
	entry.ID = uuid.NewString()
	s.audit[entry.ID] = &auditRecord{seq: s.nextSeq(), entry: cloneAudit(entry)}
	return nil
}

// CreateOrganization stores org with a new id and records entry
func (s *Store) CreateOrganization(_ context.Context, org *model.Organization, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.orgs {
		if rec.org.OrganizationCode == org.OrganizationCode {
			return fmt.Errorf("organization code %s: %w", org.OrganizationCode, store.ErrConflict)
		}
	}

	id := uuid.NewString()
	if entry != nil {
		entry.EntityID = id
		if err := s.appendAuditLocked(entry); err != nil {
			return err
		}
	}
	org.ID = id
	s.orgs[id] = &orgRecord{seq: s.nextSeq(), org: cloneOrg(org)}
	return nil
}

// FindOrganization returns the organization with id within orgType
func (s *Store) FindOrganization(_ context.Context, orgType, id string) (*model.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.orgs[id]
	if !ok || rec.org.Type != orgType {
		return nil, store.ErrNotFound
	}
	return cloneOrg(rec.org), nil
}

// FindOrganizationByCode returns the organization with the given code within orgType
func (s *Store) FindOrganizationByCode(_ context.Context, orgType, code string) (*model.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.orgs {
		if rec.org.Type == orgType && rec.org.OrganizationCode == code {
			return cloneOrg(rec.org), nil
		}
	}
	return nil, store.ErrNotFound
}

// ListOrganizations returns one page of matching organizations, newest first, and the match count
func (s *Store) ListOrganizations(_ context.Context, filter store.OrgFilter, page util.PageRequest) ([]*model.Organization, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*orgRecord
	for _, rec := range s.orgs {
		if matchOrg(rec.org, filter) {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.org.CreatedAt.Equal(b.org.CreatedAt) {
			return a.org.CreatedAt.After(b.org.CreatedAt)
		}
		return a.seq > b.seq
	})

	total := int64(len(matched))
	out := make([]*model.Organization, 0)
	for _, i := range window(len(matched), page) {
		out = append(out, cloneOrg(matched[i].org))
	}
	return out, total, nil
}

// CountOrganizationsByStatus counts organizations of orgType per status
func (s *Store) CountOrganizationsByStatus(_ context.Context, orgType string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, rec := range s.orgs {
		if rec.org.Type == orgType {
			counts[string(rec.org.Status)]++
		}
	}
	return counts, nil
}

// CountCodePrefix counts organization codes starting with prefix
func (s *Store) CountCodePrefix(_ context.Context, orgType, prefix string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, rec := range s.orgs {
		if rec.org.Type == orgType && strings.HasPrefix(rec.org.OrganizationCode, prefix) {
			n++
		}
	}
	return n, nil
}

// UpdateOrganization applies patch if the stored status still equals expected
func (s *Store) UpdateOrganization(_ context.Context, orgType, id string, expected model.Status, patch store.Patch, entry *model.AuditLog) (*model.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orgs[id]
	if !ok || rec.org.Type != orgType {
		return nil, store.ErrNotFound
	}
	if rec.org.Status != expected {
		return nil, store.ErrConflict
	}

	updated, err := applyPatch(rec.org, patch)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		entry.EntityID = id
		if err := s.appendAuditLocked(entry); err != nil {
			return nil, err
		}
	}
	rec.org = updated
	return cloneOrg(updated), nil
}

// DeleteOrganization removes the organization and records entry
func (s *Store) DeleteOrganization(_ context.Context, orgType, id string, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orgs[id]
	if !ok || rec.org.Type != orgType {
		return store.ErrNotFound
	}
	if entry != nil {
		entry.EntityID = id
		if err := s.appendAuditLocked(entry); err != nil {
			return err
		}
	}
	delete(s.orgs, id)
	return nil
}

// AppendAudit records a standalone audit entry
func (s *Store) AppendAudit(_ context.Context, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendAuditLocked(entry)
}

// FindAudit returns one audit entry
func (s *Store) FindAudit(_ context.Context, id string) (*model.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.audit[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneAudit(rec.entry), nil
}

// ListAudit returns one page of matching audit entries, newest first, and the match count
func (s *Store) ListAudit(_ context.Context, filter store.AuditFilter, page util.PageRequest) ([]*model.AuditLog, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.sortedAudit(func(e *model.AuditLog) bool { return matchAudit(e, filter) })
	out := make([]*model.AuditLog, 0)
	for _, i := range window(len(matched), page) {
		out = append(out, cloneAudit(matched[i]))
	}
	return out, int64(len(matched)), nil
}

// AuditStats aggregates entries whose timestamp falls in the window
func (s *Store) AuditStats(_ context.Context, win util.TimeRange) (*model.AuditStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.NewAuditStats()
	for _, rec := range s.audit {
		e := rec.entry
		if !win.Contains(e.Timestamp) {
			continue
		}
		stats.Total++
		stats.ByAction[string(e.Action)]++
		stats.ByEntityType[string(e.EntityType)]++
		stats.ByStatus[e.Status]++
		stats.ByRole[e.PerformedByRole]++
	}
	return stats, nil
}

// RecentAudit returns the newest limit entries
func (s *Store) RecentAudit(_ context.Context, limit int) ([]*model.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.sortedAudit(func(*model.AuditLog) bool { return true })
	if limit < len(matched) {
		matched = matched[:limit]
	}
	out := make([]*model.AuditLog, 0, len(matched))
	for _, e := range matched {
		out = append(out, cloneAudit(e))
	}
	return out, nil
}

func (s *Store) sortedAudit(keep func(*model.AuditLog) bool) []*model.AuditLog {
	var recs []*auditRecord
	for _, rec := range s.audit {
		if keep(rec.entry) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.entry.Timestamp.Equal(b.entry.Timestamp) {
			return a.entry.Timestamp.After(b.entry.Timestamp)
		}
		return a.seq > b.seq
	})
	out := make([]*model.AuditLog, len(recs))
	for i, rec := range recs {
		out[i] = rec.entry
	}
	return out
}

// ListRequests returns the hospital requests addressed to a blood bank, newest first
func (s *Store) ListRequests(_ context.Context, bloodBankID string) ([]*model.HospitalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.HospitalRequest, 0)
	for _, r := range s.requests {
		if r.BloodBankID == bloodBankID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// RequestSummary counts hospital requests by status and urgency
func (s *Store) RequestSummary(_ context.Context) (*model.RequestSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := &model.RequestSummary{ByStatus: map[string]int64{}, ByUrgency: map[string]int64{}}
	for _, r := range s.requests {
		sum.Total++
		sum.ByStatus[r.Status]++
		sum.ByUrgency[r.Urgency]++
	}
	return sum, nil
}

// InsertRequest stores a hospital request
func (s *Store) InsertRequest(_ context.Context, req *model.HospitalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.ID = uuid.NewString()
	cp := *req
	s.requests = append(s.requests, &cp)
	return nil
}

// Close is a no-op
func (s *Store) Close(context.Context) error {
	return nil
}

// window returns the indexes of the page within n sorted results.
func window(n int, page util.PageRequest) []int {
	start := page.Offset()
	if start < 0 || start >= n || page.Limit <= 0 {
		return nil
	}
	end := n
	if page.Limit < n-start {
		end = start + page.Limit
	}
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}

// applyPatch sets the patched fields through the JSON field names, which match
// the stored field names.
func applyPatch(org *model.Organization, patch store.Patch) (*model.Organization, error) {
	raw, err := json.Marshal(org)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range patch {
		if v == nil {
			delete(fields, k)
			continue
		}
		fields[k] = v
	}
	if raw, err = json.Marshal(fields); err != nil {
		return nil, err
	}
	var out model.Organization
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}
	return &out, nil
}

func cloneOrg(o *model.Organization) *model.Organization {
	cp := *o
	if o.BloodStock != nil {
		cp.BloodStock = make(model.BloodStock, len(o.BloodStock))
		for k, v := range o.BloodStock {
			cp.BloodStock[k] = v
		}
	}
	return &cp
}

func cloneAudit(e *model.AuditLog) *model.AuditLog {
	cp := *e
	if e.Details != nil {
		cp.Details = make(map[string]interface{}, len(e.Details))
		for k, v := range e.Details {
			cp.Details[k] = v
		}
	}
	return &cp
}
