// Package api builds the Fiber application: middleware, health, metrics and routes.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Premkambaliya/Hack-The-Winter/restapi"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/respond"
)

// Options configures NewFiberApp.
type Options struct {
	Routes      restapi.Deps
	Registry    *prometheus.Registry
	CORSOrigins string
	// DisableRequestLog turns off the access log, mostly for tests.
	DisableRequestLog bool
}

// NewFiberApp creates and configures a Fiber app with REST and GraphQL routes
func NewFiberApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "bloodbank-admin API v1.0",
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  60 * time.Second,
		ErrorHandler: respond.ErrorHandler(opts.Routes.Logger),
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: origins != "*",
		AllowMethods:     "GET, POST, HEAD, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("graphql_op", "-")
		return c.Next()
	})
	if !opts.DisableRequestLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path} ${locals:graphql_op}\n",
		}))
	}

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	if opts.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	restapi.SetupRoutes(app, opts.Routes)

	return app
}
