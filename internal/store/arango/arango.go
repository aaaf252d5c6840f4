package arango

import (
	"context"
	"errors"
	"fmt"

	"github.com/arangodb/go-driver/v2/arangodb"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/database"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// Store is the ArangoDB implementation of store.Store. Organization writes and
// their audit entries are issued as one AQL query, which ArangoDB executes as a
// single transaction.
type Store struct {
	db     database.DBConnection
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

// New wraps an initialized database connection
func New(db database.DBConnection, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

type bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

func buckets(in []bucket) map[string]int64 {
	out := make(map[string]int64, len(in))
	for _, b := range in {
		out[b.Key] = b.Count
	}
	return out
}

type mutationResult struct {
	Found   bool                `json:"found"`
	Key     string              `json:"key"`
	Doc     *model.Organization `json:"doc"`
	AuditID string              `json:"auditId"`
}

func (s *Store) run(ctx context.Context, q Query) (arangodb.Cursor, error) {
	return s.db.Database.Query(ctx, q.Text, &arangodb.QueryOptions{
		BindVars: q.BindVars,
	})
}

// readAll reads every document of the query into a slice
func readAll[T any](ctx context.Context, s *Store, q Query) ([]T, error) {
	cursor, err := s.run(ctx, q)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	out := make([]T, 0)
	for cursor.HasMore() {
		var item T
		if _, err := cursor.ReadDocument(ctx, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// readOne reads the first document of the query
func readOne[T any](ctx context.Context, s *Store, q Query) (T, bool, error) {
	var item T

	cursor, err := s.run(ctx, q)
	if err != nil {
		return item, false, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return item, false, nil
	}
	if _, err := cursor.ReadDocument(ctx, &item); err != nil {
		return item, false, err
	}
	return item, true, nil
}

// CreateOrganization inserts org and entry together
func (s *Store) CreateOrganization(ctx context.Context, org *model.Organization, entry *model.AuditLog) error {
	if entry == nil {
		meta, err := s.db.Collections[database.OrganizationsCollection].CreateDocument(ctx, org)
		if err != nil {
			return fmt.Errorf("insert organization: %w", err)
		}
		org.ID = meta.Key
		return nil
	}

	res, ok, err := readOne[mutationResult](ctx, s, CreateOrganizationQuery(org, entry))
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	if !ok || res.Key == "" {
		return errors.New("insert organization: no document returned")
	}
	org.ID = res.Key
	entry.ID = res.AuditID
	entry.EntityID = res.Key
	return nil
}

func (s *Store) findOrganization(ctx context.Context, q Query) (*model.Organization, error) {
	org, ok, err := readOne[model.Organization](ctx, s, q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrNotFound
	}
	return &org, nil
}

// FindOrganization returns the organization with key id. A malformed key is not found.
func (s *Store) FindOrganization(ctx context.Context, orgType, id string) (*model.Organization, error) {
	if !util.IsValidKey(id) {
		return nil, store.ErrNotFound
	}
	return s.findOrganization(ctx, FindOrganizationQuery(orgType, "_key", id))
}

// FindOrganizationByCode returns the organization with the given code
func (s *Store) FindOrganizationByCode(ctx context.Context, orgType, code string) (*model.Organization, error) {
	return s.findOrganization(ctx, FindOrganizationQuery(orgType, "organizationCode", code))
}

// ListOrganizations returns one page of matching organizations and the match count
func (s *Store) ListOrganizations(ctx context.Context, filter store.OrgFilter, page util.PageRequest) ([]*model.Organization, int64, error) {
	type result struct {
		Total int64                 `json:"total"`
		Items []*model.Organization `json:"items"`
	}
	res, _, err := readOne[result](ctx, s, ListOrganizationsQuery(filter, page))
	if err != nil {
		return nil, 0, err
	}
	if res.Items == nil {
		res.Items = []*model.Organization{}
	}
	return res.Items, res.Total, nil
}

// CountOrganizationsByStatus counts organizations per status
func (s *Store) CountOrganizationsByStatus(ctx context.Context, orgType string) (map[string]int64, error) {
	rows, err := readAll[bucket](ctx, s, CountByStatusQuery(orgType))
	if err != nil {
		return nil, err
	}
	return buckets(rows), nil
}

// CountCodePrefix counts organization codes that start with prefix
func (s *Store) CountCodePrefix(ctx context.Context, orgType, prefix string) (int64, error) {
	n, _, err := readOne[int64](ctx, s, CountCodePrefixQuery(orgType, prefix))
	return n, err
}

// UpdateOrganization applies patch if the stored status still equals expected
func (s *Store) UpdateOrganization(ctx context.Context, orgType, id string, expected model.Status, patch store.Patch, entry *model.AuditLog) (*model.Organization, error) {
	if !util.IsValidKey(id) {
		return nil, store.ErrNotFound
	}

	res, _, err := readOne[mutationResult](ctx, s, UpdateOrganizationQuery(orgType, id, expected, patch, entry))
	if err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	if !res.Found {
		return nil, store.ErrNotFound
	}
	if res.Doc == nil {
		return nil, store.ErrConflict
	}
	if entry != nil {
		entry.ID = res.AuditID
		entry.EntityID = id
	}
	return res.Doc, nil
}

// DeleteOrganization removes the organization and records entry
func (s *Store) DeleteOrganization(ctx context.Context, orgType, id string, entry *model.AuditLog) error {
	if !util.IsValidKey(id) {
		return store.ErrNotFound
	}

	res, _, err := readOne[mutationResult](ctx, s, DeleteOrganizationQuery(orgType, id, entry))
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if !res.Found {
		return store.ErrNotFound
	}
	if entry != nil {
		entry.ID = res.AuditID
		entry.EntityID = id
	}
	return nil
}

// AppendAudit inserts a standalone audit entry
func (s *Store) AppendAudit(ctx context.Context, entry *model.AuditLog) error {
	meta, err := s.db.Collections[database.AuditLogsCollection].CreateDocument(ctx, entry)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	entry.ID = meta.Key
	return nil
}

// FindAudit returns one audit entry
func (s *Store) FindAudit(ctx context.Context, id string) (*model.AuditLog, error) {
	if !util.IsValidKey(id) {
		return nil, store.ErrNotFound
	}
	entry, ok, err := readOne[model.AuditLog](ctx, s, FindAuditQuery(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrNotFound
	}
	return &entry, nil
}

// ListAudit returns one page of matching audit entries and the match count
func (s *Store) ListAudit(ctx context.Context, filter store.AuditFilter, page util.PageRequest) ([]*model.AuditLog, int64, error) {
	type result struct {
		Total int64             `json:"total"`
		Items []*model.AuditLog `json:"items"`
	}
	res, _, err := readOne[result](ctx, s, ListAuditQuery(filter, page))
	if err != nil {
		return nil, 0, err
	}
	if res.Items == nil {
		res.Items = []*model.AuditLog{}
	}
	return res.Items, res.Total, nil
}

// AuditStats aggregates entries within the window
func (s *Store) AuditStats(ctx context.Context, window util.TimeRange) (*model.AuditStats, error) {
	type result struct {
		Total        int64    `json:"total"`
		ByAction     []bucket `json:"byAction"`
		ByEntityType []bucket `json:"byEntityType"`
		ByStatus     []bucket `json:"byStatus"`
		ByRole       []bucket `json:"byRole"`
	}
	res, _, err := readOne[result](ctx, s, AuditStatsQuery(window))
	if err != nil {
		return nil, err
	}
	return &model.AuditStats{
		Total:        res.Total,
		ByAction:     buckets(res.ByAction),
		ByEntityType: buckets(res.ByEntityType),
		ByStatus:     buckets(res.ByStatus),
		ByRole:       buckets(res.ByRole),
	}, nil
}

// RecentAudit returns the newest entries
func (s *Store) RecentAudit(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	return readAll[*model.AuditLog](ctx, s, RecentAuditQuery(limit))
}

// ListRequests returns the hospital requests addressed to a blood bank
func (s *Store) ListRequests(ctx context.Context, bloodBankID string) ([]*model.HospitalRequest, error) {
	return readAll[*model.HospitalRequest](ctx, s, ListRequestsQuery(bloodBankID))
}

// RequestSummary counts hospital requests by status and urgency
func (s *Store) RequestSummary(ctx context.Context) (*model.RequestSummary, error) {
	type result struct {
		Total     int64    `json:"total"`
		ByStatus  []bucket `json:"byStatus"`
		ByUrgency []bucket `json:"byUrgency"`
	}
	res, _, err := readOne[result](ctx, s, RequestSummaryQuery())
	if err != nil {
		return nil, err
	}
	return &model.RequestSummary{Total: res.Total, ByStatus: buckets(res.ByStatus), ByUrgency: buckets(res.ByUrgency)}, nil
}

// InsertRequest stores a hospital request
func (s *Store) InsertRequest(ctx context.Context, req *model.HospitalRequest) error {
	meta, err := s.db.Collections[database.HospitalRequestsCollection].CreateDocument(ctx, req)
	if err != nil {
		return fmt.Errorf("insert hospital request: %w", err)
	}
	req.ID = meta.Key
	return nil
}

// Close is a no-op; the HTTP connection has no session to release
func (s *Store) Close(context.Context) error {
	return nil
}
