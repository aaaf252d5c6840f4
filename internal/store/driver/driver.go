// Package driver opens the record store selected by configuration.
package driver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/database"
	"github.com/Premkambaliya/Hack-The-Winter/internal/config"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store/arango"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store/memory"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store/mongo"
)

// Open connects to the configured backend and returns the single store handle
// shared by the whole process.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverArango:
		conn, err := database.InitializeDatabase(ctx, database.ArangoConfig{
			URL:      cfg.ArangoURL,
			User:     cfg.ArangoUser,
			Password: cfg.ArangoPass,
			Database: cfg.ArangoDB,
		}, logger)
		if err != nil {
			return nil, err
		}
		return arango.New(conn, logger), nil

	case config.DriverMongo:
		conn, err := database.InitializeMongo(ctx, database.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDB,
		}, logger)
		if err != nil {
			return nil, err
		}
		return mongo.New(conn, logger), nil

	case config.DriverMemory:
		logger.Warn("Using the in-memory store; data is lost on restart")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
