// Package seed loads blood banks and hospital requests from a YAML file into the store.
// Records that already exist, matched by code, are left untouched.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/Premkambaliya/Hack-The-Winter/events/modules/requests"
	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// Actor is the audit identity of seeded changes.
var Actor = model.Actor{ID: "seed", Role: model.RoleSuperAdmin}

// File is the seed document.
type File struct {
	BloodBanks       []BloodBank `yaml:"bloodBanks"`
	HospitalRequests []Request   `yaml:"hospitalRequests"`
}

// BloodBank is one seeded blood bank. Status is applied through the normal
// transitions after the record is created.
type BloodBank struct {
	OrganizationCode string           `yaml:"organizationCode"`
	Name             string           `yaml:"name"`
	Address          string           `yaml:"address"`
	City             string           `yaml:"city"`
	State            string           `yaml:"state"`
	PinCode          string           `yaml:"pinCode"`
	ContactPerson    string           `yaml:"contactPerson"`
	Email            string           `yaml:"email"`
	Phone            string           `yaml:"phone"`
	LicenseNumber    string           `yaml:"licenseNumber"`
	Status           string           `yaml:"status"`
	Reason           string           `yaml:"reason"`
	BloodStock       model.BloodStock `yaml:"bloodStock"`
}

// Request is one seeded hospital request, addressed by blood bank code.
type Request struct {
	model.HospitalRequest `yaml:",inline"`
	BloodBankCode         string `yaml:"bloodBankCode"`
}

// Result counts what a seeding run did.
type Result struct {
	BanksCreated    int
	BanksSkipped    int
	RequestsCreated int
	RequestsSkipped int
}

// Parse decodes and checks a seed document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, b := range f.BloodBanks {
		if b.Status == "" {
			continue
		}
		if _, ok := model.ParseStatus(b.Status); !ok {
			return nil, fmt.Errorf("bloodBanks[%d]: invalid status %q", i, b.Status)
		}
	}
	for i, r := range f.HospitalRequests {
		if r.BloodBankCode == "" && r.BloodBankID == "" {
			return nil, fmt.Errorf("hospitalRequests[%d]: bloodBankCode is required", i)
		}
	}
	return &f, nil
}

// Load reads and parses the seed file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Seeder applies seed documents through the services, so every created record is audited.
type Seeder struct {
	banks  *services.BloodBankService
	sink   requests.RequestSink
	logger *zap.Logger
	now    func() time.Time
}

// NewSeeder constructs a Seeder.
func NewSeeder(banks *services.BloodBankService, sink requests.RequestSink, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{banks: banks, sink: sink, logger: logger, now: time.Now}
}

// Apply creates the missing blood banks and requests in f.
func (s *Seeder) Apply(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}
	for _, b := range f.BloodBanks {
		created, err := s.applyBank(ctx, b)
		if err != nil {
			return res, err
		}
		if created {
			res.BanksCreated++
		} else {
			res.BanksSkipped++
		}
	}
	for _, r := range f.HospitalRequests {
		created, err := s.applyRequest(ctx, r)
		if err != nil {
			return res, err
		}
		if created {
			res.RequestsCreated++
		} else {
			res.RequestsSkipped++
		}
	}
	s.logger.Info("Seed applied",
		zap.Int("banksCreated", res.BanksCreated),
		zap.Int("banksSkipped", res.BanksSkipped),
		zap.Int("requestsCreated", res.RequestsCreated),
		zap.Int("requestsSkipped", res.RequestsSkipped))
	return res, nil
}

func (s *Seeder) applyBank(ctx context.Context, b BloodBank) (bool, error) {
	if b.OrganizationCode != "" {
		_, err := s.banks.GetByCode(ctx, b.OrganizationCode)
		if err == nil {
			return false, nil
		}
		if util.KindOf(err) != util.KindNotFound {
			return false, err
		}
	}

	org, err := s.banks.Create(ctx, services.CreateInput{
		OrganizationCode: b.OrganizationCode,
		Name:             b.Name,
		Address:          b.Address,
		City:             b.City,
		State:            b.State,
		PinCode:          b.PinCode,
		ContactPerson:    b.ContactPerson,
		Email:            b.Email,
		Phone:            b.Phone,
		LicenseNumber:    b.LicenseNumber,
		BloodStock:       b.BloodStock,
	}, Actor)
	if err != nil {
		return false, fmt.Errorf("seed blood bank %q: %w", b.Name, err)
	}

	st, _ := model.ParseStatus(b.Status)
	switch st {
	case model.StatusApproved:
		_, err = s.banks.Activate(ctx, org.ID, services.ActivateOptions{}, Actor)
	case model.StatusSuspended:
		_, err = s.banks.Suspend(ctx, org.ID, b.Reason, Actor)
	case model.StatusRejected:
		_, err = s.banks.Reject(ctx, org.ID, b.Reason, Actor)
	}
	if err != nil {
		return false, fmt.Errorf("seed blood bank %s status: %w", org.OrganizationCode, err)
	}
	return true, nil
}

func (s *Seeder) applyRequest(ctx context.Context, r Request) (bool, error) {
	req := r.HospitalRequest
	if r.BloodBankCode != "" {
		org, err := s.banks.GetByCode(ctx, r.BloodBankCode)
		if err != nil {
			return false, fmt.Errorf("seed request %s: %w", req.RequestCode, err)
		}
		req.BloodBankID = org.ID
	}

	existing, err := s.banks.Requests(ctx, req.BloodBankID)
	if err != nil {
		return false, fmt.Errorf("seed request %s: %w", req.RequestCode, err)
	}
	for _, e := range existing {
		if e.RequestCode == req.RequestCode {
			return false, nil
		}
	}

	requests.Normalize(&req, s.now())
	if err := requests.Validate(&req); err != nil {
		return false, err
	}
	if err := s.sink.InsertRequest(ctx, &req); err != nil {
		return false, fmt.Errorf("seed request %s: %w", req.RequestCode, err)
	}
	return true, nil
}
