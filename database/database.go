// Package database - Handles connecting to and bootstrapping the backing databases
package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

// Collection names shared by the ArangoDB and MongoDB drivers.
const (
	OrganizationsCollection    = "organizations"
	AuditLogsCollection        = "audit_logs"
	HospitalRequestsCollection = "hospital_requests"
)

// CollectionNames lists every document collection the service uses.
var CollectionNames = []string{OrganizationsCollection, AuditLogsCollection, HospitalRequestsCollection}

// DBConnection is the structure that defined the database engine and collections
type DBConnection struct {
	Collections map[string]arangodb.Collection
	Database    arangodb.Database
}

// ArangoConfig holds the connection settings for ArangoDB
type ArangoConfig struct {
	URL      string
	User     string
	Password string
	Database string

	// MaxElapsedTime bounds connection retries; 0 retries forever.
	MaxElapsedTime time.Duration
}

// IndexConfig describes one persistent index
type IndexConfig struct {
	Collection string
	IdxName    string
	IdxFields  []string
	Unique     bool
}

// Indexes lists every persistent index, shared by both drivers.
var Indexes = []IndexConfig{
	// Organization lookups and list filters
	{Collection: OrganizationsCollection, IdxName: "org_code_unique", IdxFields: []string{"organizationCode"}, Unique: true},
	{Collection: OrganizationsCollection, IdxName: "org_type_status", IdxFields: []string{"type", "status"}},
	{Collection: OrganizationsCollection, IdxName: "org_type_created", IdxFields: []string{"type", "createdAt"}},
	{Collection: OrganizationsCollection, IdxName: "org_city", IdxFields: []string{"city"}},

	// Audit log queries
	{Collection: AuditLogsCollection, IdxName: "audit_timestamp", IdxFields: []string{"timestamp"}},
	{Collection: AuditLogsCollection, IdxName: "audit_entity_type", IdxFields: []string{"entityType", "timestamp"}},
	{Collection: AuditLogsCollection, IdxName: "audit_action", IdxFields: []string{"action", "timestamp"}},
	{Collection: AuditLogsCollection, IdxName: "audit_entity_code", IdxFields: []string{"entityCode", "timestamp"}},
	{Collection: AuditLogsCollection, IdxName: "audit_performed_by", IdxFields: []string{"performedBy"}},

	// Hospital requests per blood bank
	{Collection: HospitalRequestsCollection, IdxName: "request_blood_bank", IdxFields: []string{"bloodBankId", "createdAt"}},
}

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// newBackOff returns the exponential backoff used for every connection attempt
func newBackOff(maxElapsed time.Duration) *backoff.ExponentialBackOff {
	const initialInterval = 10 * time.Second
	const maxInterval = 2 * time.Minute

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = maxElapsed
	return bo
}

// InitializeDatabase connects to ArangoDB, creating the database, collections and indexes as needed
func InitializeDatabase(ctx context.Context, cfg ArangoConfig, logger *zap.Logger) (DBConnection, error) {
	var client arangodb.Client

	//
	// Database connection with backoff retry
	//

	err := backoff.RetryNotify(func() error {
		logger.Info("Attempting to connect to ArangoDB", zap.String("url", cfg.URL))
		endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
		conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, cfg.User, cfg.Password))

		client = arangodb.NewClient(conn)

		// Ask the version of the server
		versionInfo, err := client.Version(ctx)
		if err != nil {
			return err
		}

		logger.Sugar().Infof("Database has version '%s' and license '%s'", versionInfo.Version, versionInfo.License)
		return nil

	}, backoff.WithContext(newBackOff(cfg.MaxElapsedTime), ctx), func(err error, wait time.Duration) {
		logger.Warn("Retrying connection to ArangoDB", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		return DBConnection{}, fmt.Errorf("connect to arangodb: %w", err)
	}

	//
	// Database creation
	//

	db, err := ensureDatabase(ctx, client, cfg.Database)
	if err != nil {
		return DBConnection{}, err
	}

	//
	// Collection creation for document storage
	//

	collections := make(map[string]arangodb.Collection)
	for _, collectionName := range CollectionNames {
		var col arangodb.Collection

		exists, _ := db.CollectionExists(ctx, collectionName)
		if exists {
			var options arangodb.GetCollectionOptions
			if col, err = db.GetCollection(ctx, collectionName, &options); err != nil {
				return DBConnection{}, fmt.Errorf("failed to use collection %s: %w", collectionName, err)
			}
		} else {
			if col, err = db.CreateCollection(ctx, collectionName, nil); err != nil {
				return DBConnection{}, fmt.Errorf("failed to create collection %s: %w", collectionName, err)
			}
		}

		collections[collectionName] = col
	}

	//
	// Index creation
	//

	for _, idx := range Indexes {
		if err := ensureIndex(ctx, collections[idx.Collection], idx, logger); err != nil {
			return DBConnection{}, err
		}
	}

	logger.Info("Database initialization complete", zap.String("database", cfg.Database))

	return DBConnection{
		Database:    db,
		Collections: collections,
	}, nil
}

func ensureDatabase(ctx context.Context, client arangodb.Client, databaseName string) (arangodb.Database, error) {
	exists := false
	dblist, err := client.Databases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}

	for _, dbinfo := range dblist {
		if dbinfo.Name() == databaseName {
			exists = true
			break
		}
	}

	if exists {
		var options arangodb.GetDatabaseOptions
		db, err := client.GetDatabase(ctx, databaseName, &options)
		if err != nil {
			return nil, fmt.Errorf("failed to get database: %w", err)
		}
		return db, nil
	}

	db, err := client.CreateDatabase(ctx, databaseName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	return db, nil
}

func ensureIndex(ctx context.Context, col arangodb.Collection, idx IndexConfig, logger *zap.Logger) error {
	if indexes, err := col.Indexes(ctx); err == nil {
		for _, index := range indexes {
			if idx.IdxName == index.Name {
				return nil
			}
		}
	}

	unique := idx.Unique
	sparse := false
	indexOptions := arangodb.CreatePersistentIndexOptions{
		Unique: &unique,
		Sparse: &sparse,
		Name:   idx.IdxName,
	}

	if _, _, err := col.EnsurePersistentIndex(ctx, idx.IdxFields, &indexOptions); err != nil {
		return fmt.Errorf("error creating index %s: %w", idx.IdxName, err)
	}
	logger.Sugar().Infof("Created index: %s on %s.%v", idx.IdxName, idx.Collection, idx.IdxFields)
	return nil
}
