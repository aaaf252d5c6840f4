package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoConfig holds the connection settings for MongoDB
type MongoConfig struct {
	URI      string
	Database string

	// MaxElapsedTime bounds connection retries; 0 retries forever.
	MaxElapsedTime time.Duration
}

// MongoConnection is the MongoDB client with the service's collections
type MongoConnection struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections map[string]*mongo.Collection
}

// InitializeMongo connects to MongoDB and ensures the shared indexes exist
func InitializeMongo(ctx context.Context, cfg MongoConfig, logger *zap.Logger) (MongoConnection, error) {
	var client *mongo.Client

	err := backoff.RetryNotify(func() error {
		logger.Info("Attempting to connect to MongoDB")
		c, err := mongo.Connect(ctx, options.Client().
			ApplyURI(cfg.URI).
			SetServerSelectionTimeout(10*time.Second).
			SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true}))
		if err != nil {
			return err
		}
		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			_ = c.Disconnect(ctx)
			return err
		}
		client = c
		return nil
	}, backoff.WithContext(newBackOff(cfg.MaxElapsedTime), ctx), func(err error, wait time.Duration) {
		logger.Warn("Retrying connection to MongoDB", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		return MongoConnection{}, fmt.Errorf("connect to mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	collections := make(map[string]*mongo.Collection, len(CollectionNames))
	for _, name := range CollectionNames {
		collections[name] = db.Collection(name)
	}

	for _, idx := range Indexes {
		keys := bson.D{}
		for _, field := range idx.IdxFields {
			keys = append(keys, bson.E{Key: field, Value: 1})
		}
		model := mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetName(idx.IdxName).SetUnique(idx.Unique),
		}
		if _, err := collections[idx.Collection].Indexes().CreateOne(ctx, model); err != nil {
			return MongoConnection{}, fmt.Errorf("error creating index %s: %w", idx.IdxName, err)
		}
	}

	logger.Info("MongoDB initialization complete", zap.String("database", cfg.Database))

	return MongoConnection{Client: client, Database: db, Collections: collections}, nil
}
