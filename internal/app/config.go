package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/sayevvv/LearnUp-sub001/internal/data/db"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/recommend"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/classify"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/envutil"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/neo4jdb"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/redisdb"
)

type Config struct {
	Addr            string
	ServiceName     string
	Environment     string
	Version         string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	DB    db.Config
	Redis redisdb.Config
	Neo4j neo4jdb.Config

	Tracing observability.TracingConfig

	CatalogSeedFile          string
	CatalogInvalidateChannel string
	Classifier               classify.Config
	Feeds                    recommend.Config
}

func LoadConfig(log *logger.Logger) (Config, error) {
	addr := envutil.String("HTTP_ADDR", "", log)
	if addr == "" {
		addr = ":" + envutil.String("PORT", "8080", log)
	}

	classifierCfg, err := classify.LoadConfig(log)
	if err != nil {
		return Config{}, fmt.Errorf("classifier config: %w", err)
	}
	feedsCfg, err := recommend.LoadConfig(log)
	if err != nil {
		return Config{}, fmt.Errorf("feed config: %w", err)
	}

	tracing := observability.LoadTracingConfig(log)

	cfg := Config{
		Addr:            addr,
		ServiceName:     envutil.String("SERVICE_NAME", "learnup-api", log),
		Environment:     envutil.String("APP_ENV", "development", log),
		Version:         envutil.String("APP_VERSION", "", log),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second, log),
		CORSOrigins:     splitList(envutil.String("CORS_ORIGINS", "", log)),

		DB: db.Config{
			Driver:        envutil.String("DB_DRIVER", db.DriverPostgres, log),
			DSN:           envutil.String("DB_DSN", "", log),
			Host:          envutil.String("POSTGRES_HOST", "localhost", log),
			Port:          envutil.String("POSTGRES_PORT", "5432", log),
			User:          envutil.String("POSTGRES_USER", "postgres", log),
			Password:      envutil.String("POSTGRES_PASSWORD", "", nil),
			Name:          envutil.String("POSTGRES_NAME", "learnup", log),
			SlowThreshold: envutil.Duration("DB_SLOW_THRESHOLD", time.Second, log),
			MaxOpenConns:  envutil.Int("DB_MAX_OPEN_CONNS", 20, log),
		},
		Tracing: tracing,

		Redis: redisdb.Config{
			Addr:     envutil.String("REDIS_ADDR", "", log),
			Password: envutil.String("REDIS_PASSWORD", "", nil),
			DB:       envutil.Int("REDIS_DB", 0, log),
		},
		Neo4j: neo4jdb.Config{
			URI:         envutil.String("NEO4J_URI", "", log),
			User:        envutil.String("NEO4J_USER", "neo4j", log),
			Password:    envutil.String("NEO4J_PASSWORD", "", nil),
			Database:    envutil.String("NEO4J_DATABASE", "", log),
			Timeout:     envutil.Duration("NEO4J_TIMEOUT", 10*time.Second, log),
			MaxPoolSize: envutil.Int("NEO4J_MAX_POOL_SIZE", 50, log),
		},

		CatalogSeedFile:          envutil.String("CATALOG_SEED_FILE", "", log),
		CatalogInvalidateChannel: envutil.String("CATALOG_INVALIDATE_CHANNEL", "learnup:catalog:invalidate", log),
		Classifier:               classifierCfg,
		Feeds:                    feedsCfg,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	switch strings.ToLower(strings.TrimSpace(c.DB.Driver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverPostgres, db.DriverSQLite, c.DB.Driver)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.CatalogInvalidateChannel) == "" {
		return fmt.Errorf("CATALOG_INVALIDATE_CHANNEL must not be empty")
	}
	if err := c.Classifier.Validate(); err != nil {
		return err
	}
	return c.Feeds.Validate()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
