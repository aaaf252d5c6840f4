package bloodbanks

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store/memory"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/modules/auth"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/respond"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type HandlersSuite struct {
	suite.Suite
	app   *fiber.App
	store *memory.Store
	token string
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	s.store = memory.New()
	audit := services.NewAuditService(s.store, nil)
	svc := services.NewBloodBankService(s.store, audit)

	authn, err := auth.NewAuthenticator("secret")
	s.Require().NoError(err)
	s.token, err = authn.GenerateJWT(model.User{ID: "admin-1", Username: "root", Role: model.RoleSuperAdmin})
	s.Require().NoError(err)

	s.app = fiber.New(fiber.Config{ErrorHandler: respond.ErrorHandler(zap.NewNop())})
	group := s.app.Group("/bloodbanks", authn.RequireAuth(), auth.RequireAdmin())
	NewHandlers(svc, zap.NewNop(), 0).Register(group)
}

func (s *HandlersSuite) do(method, path string, body interface{}) (int, envelope) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Require().NoError(json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (s *HandlersSuite) createBank(name, city string) *model.Organization {
	status, env := s.do("POST", "/bloodbanks", map[string]interface{}{
		"name": name, "address": "1 Main St", "city": city, "state": "Karnataka",
		"email": name + "@example.org", "phone": "0801234567", "licenseNumber": "LIC-" + name,
	})
	s.Require().Equal(fiber.StatusCreated, status, env.Message)
	var org model.Organization
	s.Require().NoError(json.Unmarshal(env.Data, &org))
	return &org
}

func (s *HandlersSuite) TestCreateAndLookup() {
	org := s.createBank("jeevan", "Bengaluru")
	s.Equal("BB-BEN-001", org.OrganizationCode)
	s.Equal(model.StatusPending, org.Status)

	status, env := s.do("GET", "/bloodbanks/id/"+org.ID, nil)
	s.Equal(fiber.StatusOK, status)
	s.True(env.Success)

	status, env = s.do("GET", "/bloodbanks/code/BB-BEN-001", nil)
	s.Equal(fiber.StatusOK, status)
	var byCode model.Organization
	s.Require().NoError(json.Unmarshal(env.Data, &byCode))
	s.Equal(org.ID, byCode.ID)

	status, env = s.do("GET", "/bloodbanks/id/nope", nil)
	s.Equal(fiber.StatusNotFound, status)
	s.False(env.Success)
	s.Equal("Blood bank not found", env.Message)

	status, _ = s.do("POST", "/bloodbanks", map[string]interface{}{"name": "only-name"})
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *HandlersSuite) TestSuspendActivateFlow() {
	org := s.createBank("jeevan", "Bengaluru")

	status, env := s.do("POST", "/bloodbanks/"+org.ID+"/suspend", ReasonRequest{Reason: "policy violation"})
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	var suspended model.Organization
	s.Require().NoError(json.Unmarshal(env.Data, &suspended))
	s.Equal(model.StatusSuspended, suspended.Status)
	s.Equal("policy violation", suspended.SuspensionReason)

	status, env = s.do("POST", "/bloodbanks/"+org.ID+"/activate", nil)
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	var active model.Organization
	s.Require().NoError(json.Unmarshal(env.Data, &active))
	s.Equal(model.StatusApproved, active.Status)
	s.Equal("policy violation", active.SuspensionReason)
	s.True(active.UpdatedAt.After(suspended.UpdatedAt))

	status, env = s.do("POST", "/bloodbanks/"+org.ID+"/reject", ReasonRequest{Reason: "late"})
	s.Equal(fiber.StatusBadRequest, status)
	s.Contains(env.Message, "APPROVED")

	status, _ = s.do("POST", "/bloodbanks/missing/activate", nil)
	s.Equal(fiber.StatusNotFound, status)
}

func (s *HandlersSuite) TestListFiltersAndPagination() {
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		s.createBank(name, "Mysuru")
	}
	s.createBank("f", "Hubli")

	status, env := s.do("GET", "/bloodbanks?city=mysuru&limit=2&page=3", nil)
	s.Require().Equal(fiber.StatusOK, status)
	var page model.BloodBankPage
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.EqualValues(5, page.Pagination.Total)
	s.Equal(3, page.Pagination.TotalPages)
	s.Len(page.BloodBanks, 1)

	status, env = s.do("GET", "/bloodbanks?search=BB-HUB", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.EqualValues(1, page.Pagination.Total)

	status, _ = s.do("GET", "/bloodbanks?status=ACTIVE", nil)
	s.Equal(fiber.StatusBadRequest, status)
	status, _ = s.do("GET", "/bloodbanks?limit=0", nil)
	s.Equal(fiber.StatusBadRequest, status)
	status, _ = s.do("GET", "/bloodbanks?dateFrom=yesterday", nil)
	s.Equal(fiber.StatusBadRequest, status)
	status, _ = s.do("GET", "/bloodbanks?page=4611686018427387905&limit=3", nil)
	s.Equal(fiber.StatusBadRequest, status)

	status, env = s.do("GET", "/bloodbanks?page=1000&limit=1000", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Empty(page.BloodBanks)
	s.EqualValues(6, page.Pagination.Total)

	status, env = s.do("GET", "/bloodbanks/status/pending", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.EqualValues(6, page.Pagination.Total)
}

func (s *HandlersSuite) TestStock() {
	org := s.createBank("jeevan", "Bengaluru")

	status, env := s.do("GET", "/bloodbanks/"+org.ID+"/stock", nil)
	s.Require().Equal(fiber.StatusOK, status)
	var snap model.StockSnapshot
	s.Require().NoError(json.Unmarshal(env.Data, &snap))
	s.Len(snap.BloodStock, 8)
	s.Equal(0, snap.BloodStock["AB-"])

	stock := model.EmptyBloodStock()
	stock["AB-"] = 3
	status, env = s.do("PUT", "/bloodbanks/"+org.ID+"/stock", StockRequest{BloodStock: stock})
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	s.Require().NoError(json.Unmarshal(env.Data, &snap))
	s.Equal(3, snap.BloodStock["AB-"])

	status, _ = s.do("PUT", "/bloodbanks/"+org.ID+"/stock", map[string]interface{}{})
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *HandlersSuite) TestUpdateDeleteAndRequests() {
	org := s.createBank("jeevan", "Bengaluru")

	status, env := s.do("PUT", "/bloodbanks/"+org.ID, map[string]interface{}{"phone": "0809999999"})
	s.Require().Equal(fiber.StatusOK, status, env.Message)

	status, _ = s.do("PUT", "/bloodbanks/"+org.ID, map[string]interface{}{"status": "APPROVED"})
	s.Equal(fiber.StatusBadRequest, status)

	s.Require().NoError(s.store.InsertRequest(context.Background(), &model.HospitalRequest{
		RequestCode: "REQ-9", BloodBankID: org.ID, BloodGroup: "B+", Units: 3,
		Urgency: model.UrgencyUrgent, Status: model.RequestPending,
	}))
	status, env = s.do("GET", "/bloodbanks/"+org.ID+"/requests", nil)
	s.Require().Equal(fiber.StatusOK, status)
	var reqs RequestsResponse
	s.Require().NoError(json.Unmarshal(env.Data, &reqs))
	s.Equal(1, reqs.Count)

	status, _ = s.do("DELETE", "/bloodbanks/"+org.ID, nil)
	s.Equal(fiber.StatusOK, status)
	status, _ = s.do("GET", "/bloodbanks/id/"+org.ID, nil)
	s.Equal(fiber.StatusNotFound, status)

	logs, total, err := s.store.ListAudit(context.Background(), store.AuditFilter{EntityCode: org.OrganizationCode}, util.PageRequest{Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Equal(model.ActionDeleted, logs[0].Action)
	s.Equal("admin-1", logs[0].PerformedBy)
	s.Equal(model.RoleSuperAdmin, logs[0].PerformedByRole)
}

func (s *HandlersSuite) TestUnauthenticated() {
	resp, err := s.app.Test(httptest.NewRequest("GET", "/bloodbanks", nil))
	s.Require().NoError(err)
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}
