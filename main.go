// Package main is the entry point for the blood-bank network administration service:
// it loads configuration, opens the record store, wires the services and serves
// the REST and GraphQL APIs until SIGINT or SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/events/modules/audit"
	gqlschema "github.com/Premkambaliya/Hack-The-Winter/graphql"
	"github.com/Premkambaliya/Hack-The-Winter/internal/api"
	"github.com/Premkambaliya/Hack-The-Winter/internal/config"
	"github.com/Premkambaliya/Hack-The-Winter/internal/kafka"
	"github.com/Premkambaliya/Hack-The-Winter/internal/metrics"
	"github.com/Premkambaliya/Hack-The-Winter/internal/seed"
	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store/driver"
	"github.com/Premkambaliya/Hack-The-Winter/restapi"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/modules/auth"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		util.NewLogger("info").Fatal("Invalid configuration", zap.Error(err))
	}
	logger := util.NewLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	if envLoaded {
		logger.Info("Loaded settings from .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	st, err := driver.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	st = driver.Instrument(st, m)

	var publisher services.AuditPublisher
	var producer *audit.Producer
	kafkaCfg := kafka.Config{
		Brokers:      cfg.KafkaBrokers,
		Username:     cfg.KafkaAPIKey,
		Password:     cfg.KafkaAPISecret,
		RequestTopic: cfg.KafkaRequestTopic,
		GroupID:      cfg.KafkaGroupID,
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer = audit.NewProducer(cfg.KafkaBrokers, cfg.KafkaAuditTopic, kafka.NewTransport(kafkaCfg))
		publisher = producer
		if err := kafka.RunEventProcessor(ctx, kafkaCfg, st, logger); err != nil {
			logger.Warn("Hospital request consumer not started", zap.Error(err))
		}
	} else {
		logger.Info("KAFKA_BROKERS not set; audit events are not published")
	}

	opts := []services.Option{services.WithLogger(logger), services.WithMetrics(m)}
	auditSvc := services.NewAuditService(st, publisher, opts...)
	bankSvc := services.NewBloodBankService(st, auditSvc, opts...)
	dashSvc := services.NewDashboardService(st, auditSvc, opts...)

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			logger.Fatal("Failed to load seed file", zap.String("path", cfg.SeedFile), zap.Error(err))
		}
		if _, err := seed.NewSeeder(bankSvc, st, logger).Apply(ctx, f); err != nil {
			logger.Fatal("Failed to apply seed file", zap.String("path", cfg.SeedFile), zap.Error(err))
		}
	}

	schema, err := gqlschema.CreateSchema(dashSvc)
	if err != nil {
		logger.Fatal("Failed to create GraphQL schema", zap.Error(err))
	}
	authn, err := auth.NewAuthenticator(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("Failed to configure authentication", zap.Error(err))
	}

	app := api.NewFiberApp(api.Options{
		Routes: restapi.Deps{
			Auth:         authn,
			BloodBanks:   bankSvc,
			Audit:        auditSvc,
			Schema:       schema,
			Logger:       logger,
			MaxPageLimit: cfg.MaxPageLimit,
		},
		Registry:    m.Registry,
		CORSOrigins: cfg.CORSOrigins,
	})

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("Failed to close Kafka producer", zap.Error(err))
		}
	}
	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := st.Close(closeCtx); err != nil {
		logger.Warn("Failed to close record store", zap.Error(err))
	}
	logger.Info("Shutdown complete")
}
