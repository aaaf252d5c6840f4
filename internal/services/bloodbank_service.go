package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// bloodBankCodeKind is the organization code prefix for blood banks.
const bloodBankCodeKind = "BB"

// maxCodeAttempts bounds the search for a free organization code.
const maxCodeAttempts = 1000

// BloodBankStore is the part of the record store the blood bank service needs.
type BloodBankStore interface {
	store.OrganizationStore
	store.RequestStore
}

// BloodBankService manages blood bank records and their status lifecycle.
// Every committed mutation writes its audit entry in the same store call.
type BloodBankService struct {
	common
	store BloodBankStore
	audit *AuditService
}

// NewBloodBankService constructs a BloodBankService.
func NewBloodBankService(s BloodBankStore, audit *AuditService, opts ...Option) *BloodBankService {
	return &BloodBankService{common: applyOptions(opts), store: s, audit: audit}
}

// CreateInput is the payload for registering a blood bank.
type CreateInput struct {
	OrganizationCode string           `json:"organizationCode"`
	Name             string           `json:"name"`
	Address          string           `json:"address"`
	City             string           `json:"city"`
	State            string           `json:"state"`
	PinCode          string           `json:"pinCode"`
	ContactPerson    string           `json:"contactPerson"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	LicenseNumber    string           `json:"licenseNumber"`
	BloodStock       model.BloodStock `json:"bloodStock,omitempty"`
}

// ActivateOptions tunes an activation.
type ActivateOptions struct {
	ClearSuspensionReason bool `json:"clearSuspensionReason"`
}

// UpdatableFields are the descriptive fields a direct update may change.
var UpdatableFields = []string{"name", "address", "city", "state", "pinCode", "contactPerson", "email", "phone", "licenseNumber"}

var requiredFields = []string{"name", "city", "state", "email", "phone", "licenseNumber"}

func notFound() error {
	return util.NewNotFoundError("Blood bank not found")
}

// translate maps store errors to application errors
func translate(err error, action string) error {
	var appErr *util.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, store.ErrNotFound):
		return notFound()
	case errors.Is(err, store.ErrConflict):
		return util.NewConflictError("Blood bank was modified concurrently; reload and retry")
	default:
		return util.NewInternalError("Failed to "+action, err)
	}
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return util.NewValidationError("email %q is not a valid address", email)
	}
	return nil
}

// Create registers a new PENDING blood bank and generates its code when none is given.
func (s *BloodBankService) Create(ctx context.Context, in CreateInput, actor model.Actor) (*model.Organization, error) {
	values := map[string]string{
		"name": in.Name, "city": in.City, "state": in.State,
		"email": in.Email, "phone": in.Phone, "licenseNumber": in.LicenseNumber,
	}
	var missing []string
	for _, f := range requiredFields {
		if util.IsEmpty(values[f]) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, util.NewValidationError("Missing required fields: %s", strings.Join(missing, ", "))
	}
	email := util.NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if in.BloodStock != nil {
		if err := in.BloodStock.Validate(); err != nil {
			return nil, util.NewValidationError("%s", err.Error())
		}
	}

	code, err := s.resolveCode(ctx, strings.TrimSpace(in.OrganizationCode), in.City)
	if err != nil {
		return nil, err
	}

	org := model.NewBloodBank(code, in.Name, in.Address, in.City, in.State, in.PinCode,
		in.ContactPerson, email, in.Phone, in.LicenseNumber, s.stamp())
	org.BloodStock = in.BloodStock

	entry, err := s.audit.Prepare(model.EntityBloodBank, code, model.ActionCreated, actor, map[string]interface{}{
		"name": org.Name,
		"city": org.City,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateOrganization(ctx, org, entry); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, util.NewConflictError("Organization code %s is already in use", code)
		}
		return nil, translate(err, "create blood bank")
	}
	s.audit.Committed(ctx, entry)
	s.logger.Info("Blood bank created", zap.String("code", code), zap.String("id", org.ID))
	return org, nil
}

// resolveCode checks a supplied code is free, or finds the next free BB-<CITY>-<SEQ> code.
func (s *BloodBankService) resolveCode(ctx context.Context, code, city string) (string, error) {
	if code != "" {
		_, err := s.store.FindOrganizationByCode(ctx, model.OrganizationTypeBloodBank, code)
		if err == nil {
			return "", util.NewConflictError("Organization code %s is already in use", code)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", translate(err, "check organization code")
		}
		return code, nil
	}

	prefix := util.OrganizationCodePrefix(bloodBankCodeKind, city)
	n, err := s.store.CountCodePrefix(ctx, model.OrganizationTypeBloodBank, prefix)
	if err != nil {
		return "", translate(err, "generate organization code")
	}
	// Deleted records leave gaps, so count+1 may already be taken.
	for seq := n + 1; seq <= n+maxCodeAttempts; seq++ {
		candidate := util.OrganizationCode(prefix, seq)
		_, err := s.store.FindOrganizationByCode(ctx, model.OrganizationTypeBloodBank, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", translate(err, "generate organization code")
		}
	}
	return "", util.NewInternalError("Failed to generate organization code", fmt.Errorf("no free code after %s%03d", prefix, n+maxCodeAttempts))
}

// Get returns a blood bank by id.
func (s *BloodBankService) Get(ctx context.Context, id string) (*model.Organization, error) {
	org, err := s.store.FindOrganization(ctx, model.OrganizationTypeBloodBank, id)
	if err != nil {
		return nil, translate(err, "fetch blood bank")
	}
	return org, nil
}

// GetByCode returns a blood bank by organization code.
func (s *BloodBankService) GetByCode(ctx context.Context, code string) (*model.Organization, error) {
	org, err := s.store.FindOrganizationByCode(ctx, model.OrganizationTypeBloodBank, strings.TrimSpace(code))
	if err != nil {
		return nil, translate(err, "fetch blood bank")
	}
	return org, nil
}

// List returns one page of blood banks matching filter, newest first.
func (s *BloodBankService) List(ctx context.Context, filter store.OrgFilter, page util.PageRequest) (*model.BloodBankPage, error) {
	filter.Type = model.OrganizationTypeBloodBank
	if filter.Status != "" {
		st, ok := model.ParseStatus(string(filter.Status))
		if !ok {
			return nil, util.NewValidationError("Invalid status %q. Valid statuses: %s", filter.Status, model.StatusNames())
		}
		filter.Status = st
	}
	filter.City = strings.TrimSpace(filter.City)
	filter.State = strings.TrimSpace(filter.State)
	filter.Search = strings.TrimSpace(filter.Search)

	banks, total, err := s.store.ListOrganizations(ctx, filter, page)
	if err != nil {
		return nil, translate(err, "fetch blood banks")
	}
	return &model.BloodBankPage{BloodBanks: banks, Pagination: model.NewPagination(page.Page, page.Limit, total)}, nil
}

// ListByStatus returns one page of blood banks in a status; the status is case-insensitive.
func (s *BloodBankService) ListByStatus(ctx context.Context, raw string, page util.PageRequest) (*model.BloodBankPage, error) {
	st, ok := model.ParseStatus(raw)
	if !ok {
		return nil, util.NewValidationError("Invalid status %q. Valid statuses: %s", raw, model.StatusNames())
	}
	return s.List(ctx, store.OrgFilter{Status: st}, page)
}

// Stock returns the stock snapshot, zero-filled for banks with no stock record.
func (s *BloodBankService) Stock(ctx context.Context, id string) (*model.StockSnapshot, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.StockSnapshot{
		BloodBankID:      org.ID,
		OrganizationCode: org.OrganizationCode,
		Name:             org.Name,
		BloodStock:       org.Stock(),
		UpdatedAt:        org.UpdatedAt,
	}, nil
}

// Requests lists the hospital requests addressed to a blood bank.
func (s *BloodBankService) Requests(ctx context.Context, id string) ([]*model.HospitalRequest, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reqs, err := s.store.ListRequests(ctx, org.ID)
	if err != nil {
		return nil, translate(err, "fetch hospital requests")
	}
	return reqs, nil
}

// Update changes descriptive fields. Status, type, code and stock are not updatable here.
func (s *BloodBankService) Update(ctx context.Context, id string, fields map[string]interface{}, actor model.Actor) (*model.Organization, error) {
	if len(fields) == 0 {
		return nil, util.NewValidationError("No fields to update")
	}
	patch := store.Patch{}
	changed := make([]string, 0, len(fields))
	for key, raw := range fields {
		if !util.Contains(UpdatableFields, key) {
			return nil, util.NewValidationError("Field %q cannot be updated. Updatable fields: %s", key, strings.Join(UpdatableFields, ", "))
		}
		value, ok := raw.(string)
		if !ok {
			return nil, util.NewValidationError("Field %q must be a string", key)
		}
		value = strings.TrimSpace(value)
		if value == "" && util.Contains(requiredFields, key) {
			return nil, util.NewValidationError("Field %q cannot be empty", key)
		}
		if key == "email" {
			value = util.NormalizeEmail(value)
			if err := validateEmail(value); err != nil {
				return nil, err
			}
		}
		patch[key] = value
		changed = append(changed, key)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch[model.FieldUpdatedAt] = util.NextUpdateTime(s.now(), current.UpdatedAt)

	entry, err := s.audit.Prepare(model.EntityBloodBank, current.OrganizationCode, model.ActionUpdated, actor, map[string]interface{}{
		"fields": changed,
	})
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateOrganization(ctx, model.OrganizationTypeBloodBank, current.ID, current.Status, patch, entry)
	if err != nil {
		return nil, translate(err, "update blood bank")
	}
	s.audit.Committed(ctx, entry)
	return updated, nil
}

// UpdateStock replaces the stock; all eight groups must be present and non-negative.
func (s *BloodBankService) UpdateStock(ctx context.Context, id string, stock model.BloodStock, actor model.Actor) (*model.StockSnapshot, error) {
	if err := stock.Validate(); err != nil {
		return nil, util.NewValidationError("%s", err.Error())
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := store.Patch{
		model.FieldBloodStock: stock,
		model.FieldUpdatedAt:  util.NextUpdateTime(s.now(), current.UpdatedAt),
	}
	entry, err := s.audit.Prepare(model.EntityBloodStock, current.OrganizationCode, model.ActionUpdated, actor, map[string]interface{}{
		"previousTotal": current.Stock().Total(),
		"newTotal":      stock.Total(),
	})
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateOrganization(ctx, model.OrganizationTypeBloodBank, current.ID, current.Status, patch, entry)
	if err != nil {
		return nil, translate(err, "update blood stock")
	}
	s.audit.Committed(ctx, entry)
	return &model.StockSnapshot{
		BloodBankID:      updated.ID,
		OrganizationCode: updated.OrganizationCode,
		Name:             updated.Name,
		BloodStock:       updated.Stock(),
		UpdatedAt:        updated.UpdatedAt,
	}, nil
}

// Delete hard-deletes a blood bank.
func (s *BloodBankService) Delete(ctx context.Context, id string, actor model.Actor) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	entry, err := s.audit.Prepare(model.EntityBloodBank, current.OrganizationCode, model.ActionDeleted, actor, map[string]interface{}{
		"name":   current.Name,
		"status": string(current.Status),
	})
	if err != nil {
		return err
	}
	if err := s.store.DeleteOrganization(ctx, model.OrganizationTypeBloodBank, current.ID, entry); err != nil {
		return translate(err, "delete blood bank")
	}
	s.audit.Committed(ctx, entry)
	s.logger.Info("Blood bank deleted", zap.String("code", current.OrganizationCode))
	return nil
}

// Activate moves a blood bank to APPROVED. The audit action is APPROVED for a
// pending bank and ACTIVATED otherwise. Any suspension reason is kept unless
// opts asks to clear it.
func (s *BloodBankService) Activate(ctx context.Context, id string, opts ActivateOptions, actor model.Actor) (*model.Organization, error) {
	return s.transition(ctx, id, model.StatusApproved, actor, func(current *model.Organization, patch store.Patch, details map[string]interface{}) model.Action {
		if opts.ClearSuspensionReason && current.SuspensionReason != "" {
			patch[model.FieldSuspensionReason] = nil
			details["clearedSuspensionReason"] = current.SuspensionReason
		}
		if current.Status == model.StatusPending {
			return model.ActionApproved
		}
		return model.ActionActivated
	})
}

// Suspend moves a blood bank to SUSPENDED. An empty reason keeps any earlier reason.
func (s *BloodBankService) Suspend(ctx context.Context, id, reason string, actor model.Actor) (*model.Organization, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, id, model.StatusSuspended, actor, func(_ *model.Organization, patch store.Patch, details map[string]interface{}) model.Action {
		if reason != "" {
			patch[model.FieldSuspensionReason] = reason
			details["reason"] = reason
		}
		return model.ActionSuspended
	})
}

// Reject moves a pending blood bank to REJECTED.
func (s *BloodBankService) Reject(ctx context.Context, id, reason string, actor model.Actor) (*model.Organization, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, id, model.StatusRejected, actor, func(_ *model.Organization, patch store.Patch, details map[string]interface{}) model.Action {
		if reason != "" {
			patch[model.FieldRejectionReason] = reason
			details["reason"] = reason
		}
		return model.ActionRejected
	})
}

// prepareFunc adds target-specific fields and details, and picks the audit action.
type prepareFunc func(current *model.Organization, patch store.Patch, details map[string]interface{}) model.Action

// transition is the status gate: read, check the transition table, then write
// conditionally on the status that was read.
func (s *BloodBankService) transition(ctx context.Context, id string, target model.Status, actor model.Actor, prepare prepareFunc) (*model.Organization, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(target) {
		s.metrics.IncrementRejection(string(current.Status), string(target))
		return nil, util.NewValidationError("Cannot change status from %s to %s", current.Status, target)
	}

	patch := store.Patch{
		model.FieldStatus:    target,
		model.FieldUpdatedAt: util.NextUpdateTime(s.now(), current.UpdatedAt),
	}
	details := map[string]interface{}{
		"previousStatus": string(current.Status),
		"newStatus":      string(target),
	}
	action := prepare(current, patch, details)

	entry, err := s.audit.Prepare(model.EntityBloodBank, current.OrganizationCode, action, actor, details)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateOrganization(ctx, model.OrganizationTypeBloodBank, current.ID, current.Status, patch, entry)
	if err != nil {
		return nil, translate(err, "update blood bank status")
	}

	s.audit.Committed(ctx, entry)
	s.metrics.IncrementTransition(string(current.Status), string(target))
	s.logger.Info("Blood bank status changed",
		zap.String("code", current.OrganizationCode),
		zap.String("from", string(current.Status)),
		zap.String("to", string(target)),
		zap.String("by", actor.ID))
	return updated, nil
}
