package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/graphql"
	"github.com/Premkambaliya/Hack-The-Winter/internal/metrics"
	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store/memory"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/restapi"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/modules/auth"
)

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	st := memory.New()
	m := metrics.New()
	audit := services.NewAuditService(st, nil, services.WithMetrics(m))
	banks := services.NewBloodBankService(st, audit, services.WithMetrics(m))
	schema, err := graphql.CreateSchema(services.NewDashboardService(st, audit))
	require.NoError(t, err)

	authn, err := auth.NewAuthenticator("integration-secret")
	require.NoError(t, err)
	token, err := authn.GenerateJWT(model.User{ID: "a-1", Username: "admin", Role: model.RoleAdmin})
	require.NoError(t, err)

	app := NewFiberApp(Options{
		Routes: restapi.Deps{
			Auth: authn, BloodBanks: banks, Audit: audit, Schema: schema, Logger: zap.NewNop(),
		},
		Registry:          m.Registry,
		DisableRequestLog: true,
	})
	return app, token
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestHealthAndMetrics(t *testing.T) {
	app, token := newTestApp(t)

	status, body := call(t, app, "GET", "/", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "healthy")

	// Drive one transition so the counters have samples.
	status, body = call(t, app, "POST", "/api/v1/admin/bloodbanks", token, map[string]string{
		"name": "Prana", "city": "Chennai", "state": "Tamil Nadu", "email": "a@prana.in",
		"phone": "044", "licenseNumber": "TN-7",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))

	status, body = call(t, app, "GET", "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.Contains(string(body), "bloodbank_audit_entries_total"))
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	app, _ := newTestApp(t)
	for _, path := range []string{"/api/v1/admin/logs", "/api/v1/admin/bloodbanks"} {
		status, body := call(t, app, "GET", path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)

		var env model.Response
		require.NoError(t, json.Unmarshal(body, &env))
		assert.False(t, env.Success)
	}
}

func TestInvalidEnumIsBadRequest(t *testing.T) {
	app, token := newTestApp(t)
	status, body := call(t, app, "GET", "/api/v1/admin/logs/by-action/TELEPORTED", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	var env model.Response
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Contains(t, env.Message, "Valid actions")
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app, _ := newTestApp(t)
	status, body := call(t, app, "GET", "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	var env model.Response
	require.NoError(t, json.Unmarshal(body, &env))
	assert.False(t, env.Success)
}

func TestGraphQLDashboard(t *testing.T) {
	app, token := newTestApp(t)

	status, _ := call(t, app, "POST", "/api/v1/graphql", "", map[string]string{"query": "{ dashboardOverview { total } }"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := call(t, app, "POST", "/api/v1/graphql", token, map[string]string{"query": "{ dashboardOverview { total } }"})
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"data":{"dashboardOverview":{"total":0}}}`, string(body))
}

func TestGraphQLRequestShapes(t *testing.T) {
	app, token := newTestApp(t)

	status, body := call(t, app, "GET", "/api/v1/graphql?query="+url.QueryEscape("{ dashboardOverview { total } }"), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"data":{"dashboardOverview":{"total":0}}}`, string(body))

	status, body = call(t, app, "POST", "/api/v1/graphql", token, map[string]string{"query": "  "})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "Query is required")
}
