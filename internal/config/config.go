// Package config loads service configuration from the environment and an optional .env file.
package config

import (
	"fmt"
	"strings"

	"github.com/Premkambaliya/Hack-The-Winter/util"
	"github.com/joho/godotenv"
)

// Store driver names.
const (
	DriverArango = "arango"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds every setting the service reads at startup
type Config struct {
	Port     string
	LogLevel string

	StoreDriver string

	ArangoURL  string
	ArangoUser string
	ArangoPass string
	ArangoDB   string

	MongoURI string
	MongoDB  string

	JWTSecret string

	KafkaBrokers      []string
	KafkaAuditTopic   string
	KafkaRequestTopic string
	KafkaGroupID      string
	KafkaAPIKey       string
	KafkaAPISecret    string

	MaxPageLimit int
	SeedFile     string
	CORSOrigins  string
}

// Load reads .env (when present) and then the process environment.
// It reports whether a .env file was loaded.
func Load() (*Config, bool, error) {
	loaded := godotenv.Load() == nil

	dbhost := util.GetEnvDefault("ARANGO_HOST", "localhost")
	dbport := util.GetEnvDefault("ARANGO_PORT", "8529")

	cfg := &Config{
		Port:              util.GetEnvDefault("MS_PORT", "3000"),
		LogLevel:          util.GetEnvDefault("LOG_LEVEL", "info"),
		StoreDriver:       strings.ToLower(util.GetEnvDefault("STORE_DRIVER", DriverArango)),
		ArangoURL:         util.GetEnvDefault("ARANGO_URL", "http://"+dbhost+":"+dbport),
		ArangoUser:        util.GetEnvDefault("ARANGO_USER", "root"),
		ArangoPass:        util.GetEnvDefault("ARANGO_PASS", "mypassword"),
		ArangoDB:          util.GetEnvDefault("ARANGO_DB", "bloodbank"),
		MongoURI:          util.GetEnvDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           util.GetEnvDefault("MONGO_DB", "bloodbank"),
		JWTSecret:         util.GetEnvDefault("JWT_SECRET", ""),
		KafkaBrokers:      util.SplitList(util.GetEnvDefault("KAFKA_BROKERS", "")),
		KafkaAuditTopic:   util.GetEnvDefault("KAFKA_AUDIT_TOPIC", "admin-audit-events"),
		KafkaRequestTopic: util.GetEnvDefault("KAFKA_REQUEST_TOPIC", "hospital-request-events"),
		KafkaGroupID:      util.GetEnvDefault("KAFKA_GROUP_ID", "bloodbank-admin"),
		KafkaAPIKey:       util.GetEnvDefault("KAFKA_API_KEY", ""),
		KafkaAPISecret:    util.GetEnvDefault("KAFKA_API_SECRET", ""),
		MaxPageLimit:      util.GetEnvInt("MAX_PAGE_LIMIT", 0),
		SeedFile:          util.GetEnvDefault("SEED_FILE", ""),
		CORSOrigins:       util.GetEnvDefault("CORS_ORIGINS", "*"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, loaded, err
	}
	return cfg, loaded, nil
}

// Validate checks the settings that have no safe default
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverArango, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (use %s, %s or %s)", c.StoreDriver, DriverArango, DriverMongo, DriverMemory)
	}
	if util.IsEmpty(c.JWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.MaxPageLimit < 0 {
		return fmt.Errorf("MAX_PAGE_LIMIT cannot be negative")
	}
	if c.SeedFile != "" && !util.FileExists(c.SeedFile) {
		return fmt.Errorf("SEED_FILE %s does not exist", c.SeedFile)
	}
	return nil
}
