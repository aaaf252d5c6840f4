// Package mongo is the MongoDB record store. MongoDB offers no cross-document
// atomicity without a replica-set session, so an organization write is made
// conditional and its audit insert is compensated on failure.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/database"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

type orgDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	model.Organization `bson:",inline"`
}

func (d *orgDoc) toModel() *model.Organization {
	org := d.Organization
	org.ID = d.ID.Hex()
	return &org
}

type auditDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	model.AuditLog `bson:",inline"`
}

func (d *auditDoc) toModel() *model.AuditLog {
	entry := d.AuditLog
	entry.ID = d.ID.Hex()
	return &entry
}

type requestDoc struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	model.HospitalRequest `bson:",inline"`
}

type bucket struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

type countRow struct {
	N int64 `bson:"n"`
}

func buckets(in []bucket) map[string]int64 {
	out := make(map[string]int64, len(in))
	for _, b := range in {
		out[b.Key] = b.Count
	}
	return out
}

func firstCount(rows []countRow) int64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[0].N
}

// Store is the MongoDB implementation of store.Store
type Store struct {
	conn   database.MongoConnection
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

// New wraps an initialized MongoDB connection
func New(conn database.MongoConnection, logger *zap.Logger) *Store {
	return &Store{conn: conn, logger: logger}
}

func (s *Store) orgs() *mongo.Collection {
	return s.conn.Collections[database.OrganizationsCollection]
}

func (s *Store) audit() *mongo.Collection {
	return s.conn.Collections[database.AuditLogsCollection]
}

func (s *Store) requests() *mongo.Collection {
	return s.conn.Collections[database.HospitalRequestsCollection]
}

// objectID parses a hex id; malformed ids are reported as not found
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrNotFound
	}
	return oid, nil
}

func (s *Store) insertAudit(ctx context.Context, entry *model.AuditLog) error {
	res, err := s.audit().InsertOne(ctx, auditDoc{AuditLog: *entry})
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

// compensate runs a best-effort undo after a failed audit insert
func (s *Store) compensate(what string, undo func() error) {
	if err := undo(); err != nil {
		s.logger.Error("Failed to roll back organization write after audit failure",
			zap.String("operation", what), zap.Error(err))
	}
}

// CreateOrganization inserts org, then entry; the organization is removed if the audit insert fails
func (s *Store) CreateOrganization(ctx context.Context, org *model.Organization, entry *model.AuditLog) error {
	res, err := s.orgs().InsertOne(ctx, orgDoc{Organization: *org})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("organization code %s: %w", org.OrganizationCode, store.ErrConflict)
		}
		return fmt.Errorf("insert organization: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("insert organization: unexpected id type")
	}

	if entry != nil {
		entry.EntityID = oid.Hex()
		if err := s.insertAudit(ctx, entry); err != nil {
			s.compensate("create", func() error {
				_, derr := s.orgs().DeleteOne(context.WithoutCancel(ctx), bson.D{{Key: "_id", Value: oid}})
				return derr
			})
			return err
		}
	}
	org.ID = oid.Hex()
	return nil
}

func (s *Store) findOrganization(ctx context.Context, filter bson.D) (*model.Organization, error) {
	var doc orgDoc
	if err := s.orgs().FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

// FindOrganization returns the organization with id within orgType
func (s *Store) FindOrganization(ctx context.Context, orgType, id string) (*model.Organization, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOrganization(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "type", Value: orgType}})
}

// FindOrganizationByCode returns the organization with the given code
func (s *Store) FindOrganizationByCode(ctx context.Context, orgType, code string) (*model.Organization, error) {
	return s.findOrganization(ctx, bson.D{{Key: "organizationCode", Value: code}, {Key: "type", Value: orgType}})
}

// ListOrganizations returns one page of matching organizations and the match count
func (s *Store) ListOrganizations(ctx context.Context, filter store.OrgFilter, page util.PageRequest) ([]*model.Organization, int64, error) {
	f := OrgFilter(filter)
	total, err := s.orgs().CountDocuments(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit))
	cursor, err := s.orgs().Find(ctx, f, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []orgDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	out := make([]*model.Organization, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, total, nil
}

// CountOrganizationsByStatus counts organizations per status
func (s *Store) CountOrganizationsByStatus(ctx context.Context, orgType string) (map[string]int64, error) {
	cursor, err := s.orgs().Aggregate(ctx, CountByStatusPipeline(orgType))
	if err != nil {
		return nil, err
	}
	var rows []bucket
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return buckets(rows), nil
}

// CountCodePrefix counts organization codes that start with prefix
func (s *Store) CountCodePrefix(ctx context.Context, orgType, codePrefix string) (int64, error) {
	return s.orgs().CountDocuments(ctx, bson.D{
		{Key: "type", Value: orgType},
		{Key: "organizationCode", Value: prefix(codePrefix)},
	})
}

// UpdateOrganization applies patch if the stored status still equals expected.
// The previous document is restored if the audit insert fails.
func (s *Store) UpdateOrganization(ctx context.Context, orgType, id string, expected model.Status, patch store.Patch, entry *model.AuditLog) (*model.Organization, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.D{{Key: "_id", Value: oid}, {Key: "type", Value: orgType}, {Key: "status", Value: string(expected)}}
	var before orgDoc
	err = s.orgs().FindOneAndUpdate(ctx, filter, PatchUpdate(patch),
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := s.orgs().CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "type", Value: orgType}})
		if cerr != nil {
			return nil, cerr
		}
		if n == 0 {
			return nil, store.ErrNotFound
		}
		return nil, store.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}

	if entry != nil {
		entry.EntityID = id
		if err := s.insertAudit(ctx, entry); err != nil {
			s.compensate("update", func() error {
				_, rerr := s.orgs().ReplaceOne(context.WithoutCancel(ctx), bson.D{{Key: "_id", Value: oid}}, before)
				return rerr
			})
			return nil, err
		}
	}

	return s.findOrganization(ctx, bson.D{{Key: "_id", Value: oid}})
}

// DeleteOrganization removes the organization; it is reinserted if the audit insert fails
func (s *Store) DeleteOrganization(ctx context.Context, orgType, id string, entry *model.AuditLog) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	var before orgDoc
	err = s.orgs().FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "type", Value: orgType}}).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}

	if entry != nil {
		entry.EntityID = id
		if err := s.insertAudit(ctx, entry); err != nil {
			s.compensate("delete", func() error {
				_, ierr := s.orgs().InsertOne(context.WithoutCancel(ctx), before)
				return ierr
			})
			return err
		}
	}
	return nil
}

// AppendAudit inserts a standalone audit entry
func (s *Store) AppendAudit(ctx context.Context, entry *model.AuditLog) error {
	return s.insertAudit(ctx, entry)
}

// FindAudit returns one audit entry
func (s *Store) FindAudit(ctx context.Context, id string) (*model.AuditLog, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc auditDoc
	if err := s.audit().FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *Store) findAudit(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]*model.AuditLog, error) {
	cursor, err := s.audit().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []auditDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.AuditLog, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

var newestFirst = bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}

// ListAudit returns one page of matching audit entries and the match count
func (s *Store) ListAudit(ctx context.Context, filter store.AuditFilter, page util.PageRequest) ([]*model.AuditLog, int64, error) {
	f := AuditFilter(filter)
	total, err := s.audit().CountDocuments(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	logs, err := s.findAudit(ctx, f, options.Find().
		SetSort(newestFirst).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit)))
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// AuditStats aggregates entries within the window
func (s *Store) AuditStats(ctx context.Context, window util.TimeRange) (*model.AuditStats, error) {
	cursor, err := s.audit().Aggregate(ctx, StatsPipeline(window))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Total        []countRow `bson:"total"`
		ByAction     []bucket   `bson:"byAction"`
		ByEntityType []bucket   `bson:"byEntityType"`
		ByStatus     []bucket   `bson:"byStatus"`
		ByRole       []bucket   `bson:"byRole"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	stats := model.NewAuditStats()
	if len(rows) == 0 {
		return stats, nil
	}
	r := rows[0]
	stats.Total = firstCount(r.Total)
	stats.ByAction = buckets(r.ByAction)
	stats.ByEntityType = buckets(r.ByEntityType)
	stats.ByStatus = buckets(r.ByStatus)
	stats.ByRole = buckets(r.ByRole)
	return stats, nil
}

// RecentAudit returns the newest entries
func (s *Store) RecentAudit(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	return s.findAudit(ctx, bson.D{}, options.Find().SetSort(newestFirst).SetLimit(int64(limit)))
}

// ListRequests returns the hospital requests addressed to a blood bank
func (s *Store) ListRequests(ctx context.Context, bloodBankID string) ([]*model.HospitalRequest, error) {
	cursor, err := s.requests().Find(ctx, bson.D{{Key: "bloodBankId", Value: bloodBankID}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []requestDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.HospitalRequest, 0, len(docs))
	for i := range docs {
		req := docs[i].HospitalRequest
		req.ID = docs[i].ID.Hex()
		out = append(out, &req)
	}
	return out, nil
}

// RequestSummary counts hospital requests by status and urgency
func (s *Store) RequestSummary(ctx context.Context) (*model.RequestSummary, error) {
	cursor, err := s.requests().Aggregate(ctx, RequestSummaryPipeline())
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Total     []countRow `bson:"total"`
		ByStatus  []bucket   `bson:"byStatus"`
		ByUrgency []bucket   `bson:"byUrgency"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	sum := &model.RequestSummary{ByStatus: map[string]int64{}, ByUrgency: map[string]int64{}}
	if len(rows) > 0 {
		sum.Total = firstCount(rows[0].Total)
		sum.ByStatus = buckets(rows[0].ByStatus)
		sum.ByUrgency = buckets(rows[0].ByUrgency)
	}
	return sum, nil
}

// InsertRequest stores a hospital request
func (s *Store) InsertRequest(ctx context.Context, req *model.HospitalRequest) error {
	res, err := s.requests().InsertOne(ctx, requestDoc{HospitalRequest: *req})
	if err != nil {
		return fmt.Errorf("insert hospital request: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid.Hex()
	}
	return nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.conn.Client.Disconnect(ctx)
}
