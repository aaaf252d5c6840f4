package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/respond"
)

// Me returns the authenticated principal.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return respond.Fail(c, fiber.StatusUnauthorized, "Not authenticated")
		}
		return respond.OK(c, "Authenticated user", UserResponse{
			ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role,
		})
	}
}

// Refresh issues a new token for a still-valid session and sets the cookie.
func Refresh(a *Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := a.RefreshJWT(tokenFrom(c))
		if err != nil {
			return respond.Fail(c, fiber.StatusUnauthorized, "Invalid or expired session")
		}
		SetAuthCookie(c, token, a.ttl)
		return respond.OK(c, "Token refreshed", TokenResponse{Token: token, ExpiresIn: int(a.ttl.Seconds())})
	}
}

// Logout clears the session cookie and records a LOGOUT audit entry.
func Logout(audit *services.AuditService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    "",
			Expires:  time.Now().Add(-1 * time.Hour),
			MaxAge:   -1,
			HTTPOnly: true,
			SameSite: "Lax",
			Path:     "/",
		})

		if user, ok := CurrentUser(c); ok {
			actor := user.Actor()
			entry := audit.NewEntry(model.EntityUser, actor.ID, model.ActionLogout, actor, nil)
			if err := audit.Record(c.UserContext(), entry); err != nil {
				logger.Warn("Failed to audit logout", zap.String("user", actor.ID), zap.Error(err))
			}
		}
		return respond.OK(c, "Logged out successfully", nil)
	}
}

// SetAuthCookie stores token in the session cookie.
func SetAuthCookie(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}
