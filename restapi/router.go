// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/modules/auth"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/modules/bloodbanks"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/modules/logs"
)

// Deps carries what the routes need. Everything is built once in main and injected.
type Deps struct {
	Auth         *auth.Authenticator
	BloodBanks   *services.BloodBankService
	Audit        *services.AuditService
	Schema       graphql.Schema
	Logger       *zap.Logger
	MaxPageLimit int
}

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	requireAdmin := []fiber.Handler{deps.Auth.RequireAuth(), auth.RequireAdmin()}

	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL dashboard, admin only
	gql := GraphQLHandler(deps.Schema, deps.Logger)
	api.Get("/graphql", append(requireAdmin, gql)...)
	api.Post("/graphql", append(requireAdmin, gql)...)

	// Auth Routes
	authGroup := api.Group("/auth")
	authGroup.Get("/me", deps.Auth.RequireAuth(), auth.Me())
	authGroup.Post("/refresh", auth.Refresh(deps.Auth))
	authGroup.Post("/logout", deps.Auth.RequireAuth(), auth.Logout(deps.Audit, deps.Logger))

	// Administration
	admin := api.Group("/admin", requireAdmin...)
	logs.NewHandlers(deps.Audit, deps.Logger, deps.MaxPageLimit).Register(admin.Group("/logs"))
	bloodbanks.NewHandlers(deps.BloodBanks, deps.Logger, deps.MaxPageLimit).Register(admin.Group("/bloodbanks"))

	deps.Logger.Info("API routes initialized successfully")
}
