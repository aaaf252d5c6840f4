package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/respond"
)

const userLocal = "user"

// tokenFrom reads the bearer token, falling back to the session cookie.
func tokenFrom(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return c.Cookies(CookieName)
}

// RequireAuth middleware validates the token and blocks guests
func (a *Authenticator) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			return respond.Fail(c, fiber.StatusUnauthorized, "Authentication required")
		}

		claims, err := a.ValidateJWT(token)
		if err != nil {
			return respond.Fail(c, fiber.StatusUnauthorized, "Invalid or expired session")
		}

		user := claims.User()
		if user.Actor().ID == "" {
			return respond.Fail(c, fiber.StatusUnauthorized, "Token does not identify a user")
		}
		c.Locals(userLocal, user)
		c.Locals("username", user.Username)
		c.Locals("role", user.Role)
		return c.Next()
	}
}

// RequireAdmin middleware blocks principals without an administrative role
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return respond.Fail(c, fiber.StatusUnauthorized, "Authentication required")
		}
		if !user.IsAdmin() {
			return respond.Fail(c, fiber.StatusForbidden, "Insufficient permissions")
		}
		return c.Next()
	}
}

// CurrentUser returns the principal set by RequireAuth.
func CurrentUser(c *fiber.Ctx) (*model.User, bool) {
	user, ok := c.Locals(userLocal).(*model.User)
	return user, ok && user != nil
}

// CurrentActor returns the audit identity of the request's principal.
func CurrentActor(c *fiber.Ctx) model.Actor {
	if user, ok := CurrentUser(c); ok {
		return user.Actor()
	}
	return model.Actor{ID: "anonymous"}
}
