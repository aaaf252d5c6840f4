package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store/memory"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

func newAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator("test-secret")
	require.NoError(t, err)
	return a
}

func TestNewAuthenticatorRequiresSecret(t *testing.T) {
	_, err := NewAuthenticator("")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	a := newAuthenticator(t)
	token, err := a.GenerateJWT(model.User{ID: "u-1", Username: "asha", Role: model.RoleSuperAdmin})
	require.NoError(t, err)

	claims, err := a.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.User().ID)
	assert.Equal(t, model.RoleSuperAdmin, claims.Role)
	assert.Equal(t, "asha", claims.Subject)

	other, err := NewAuthenticator("different")
	require.NoError(t, err)
	_, err = other.ValidateJWT(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	a := newAuthenticator(t)
	a.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := a.GenerateJWT(model.User{Username: "asha", Role: model.RoleAdmin})
	require.NoError(t, err)

	b := newAuthenticator(t)
	_, err = b.ValidateJWT(token)
	assert.Error(t, err)
	_, err = b.RefreshJWT(token)
	assert.Error(t, err)
}

func TestAdminGate(t *testing.T) {
	a := newAuthenticator(t)
	app := fiber.New()
	app.Get("/admin", a.RequireAuth(), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString(CurrentActor(c).ID)
	})

	admin, err := a.GenerateJWT(model.User{ID: "u-1", Username: "asha", Role: model.RoleAdmin})
	require.NoError(t, err)
	hospital, err := a.GenerateJWT(model.User{ID: "u-2", Username: "city-hospital", Role: "HOSPITAL"})
	require.NoError(t, err)
	anonymous, err := a.GenerateJWT(model.User{Role: model.RoleAdmin})
	require.NoError(t, err)
	super, err := a.GenerateJWT(model.User{Username: "ops", Role: model.RoleSuperAdmin})
	require.NoError(t, err)

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"no token", func(*http.Request) {}, fiber.StatusUnauthorized, ""},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, fiber.StatusUnauthorized, ""},
		{"wrong role", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+hospital) }, fiber.StatusForbidden, ""},
		{"no user identity", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+anonymous) }, fiber.StatusUnauthorized, ""},
		{"username fallback", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+super) }, fiber.StatusOK, "ops"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin) }, fiber.StatusOK, "u-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: admin}) }, fiber.StatusOK, "u-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			tc.setup(req)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.body != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tc.body, string(body))
			}
		})
	}
}

func TestMeAndLogout(t *testing.T) {
	a := newAuthenticator(t)
	st := memory.New()
	audit := services.NewAuditService(st, nil)

	app := fiber.New()
	app.Get("/me", a.RequireAuth(), Me())
	app.Post("/logout", a.RequireAuth(), Logout(audit, zap.NewNop()))
	app.Post("/refresh", Refresh(a))

	token, err := a.GenerateJWT(model.User{ID: "u-1", Username: "asha", Role: model.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var env struct {
		Success bool         `json:"success"`
		Data    UserResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.Success)
	assert.Equal(t, "asha", env.Data.Username)

	req = httptest.NewRequest("POST", "/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("POST", "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	logs, _, err := st.ListAudit(req.Context(), store.AuditFilter{Action: model.ActionLogout}, util.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "u-1", logs[0].PerformedBy)
}
