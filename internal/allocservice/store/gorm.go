// Package store implements the allocation service's persistence layer:
// a transactional key-value store backing the seven RPC methods, with
// interchangeable SQLite and PostgreSQL backends via GORM.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marmos91/stackhaus/internal/allocservice/models"
	"github.com/marmos91/stackhaus/internal/stackerr"
)

// DatabaseType selects the backing SQL engine.
type DatabaseType string

const (
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypePostgres DatabaseType = "postgres"
)

// SQLiteConfig configures the embedded single-node backend.
type SQLiteConfig struct {
	// Path to the database file. Default: $XDG_CONFIG_HOME/stackhaus/allocd.db
	Path string
}

// PostgresConfig configures the HA-capable backend.
type PostgresConfig struct {
	Host         string
	Port         int
	Database     string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

func (c *PostgresConfig) dsn() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)
	if c.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", c.SSLMode)
	}
	return dsn
}

// Config selects and configures the backend.
type Config struct {
	Type     DatabaseType
	SQLite   SQLiteConfig
	Postgres PostgresConfig
}

func (c *Config) applyDefaults() {
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}
	if c.Type == DatabaseTypeSQLite && c.SQLite.Path == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config")
		}
		c.SQLite.Path = filepath.Join(configDir, "stackhaus", "allocd.db")
	}
	if c.Type == DatabaseTypePostgres {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
		if c.Postgres.MaxOpenConns == 0 {
			c.Postgres.MaxOpenConns = 25
		}
		if c.Postgres.MaxIdleConns == 0 {
			c.Postgres.MaxIdleConns = 5
		}
	}
}

func (c *Config) validate() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return stackerr.New(stackerr.ConfigError, "sqlite path is required")
		}
	case DatabaseTypePostgres:
		if c.Postgres.Host == "" || c.Postgres.Database == "" || c.Postgres.User == "" {
			return stackerr.New(stackerr.ConfigError, "postgres host, database, and user are required")
		}
	default:
		return stackerr.Newf(stackerr.ConfigError, "unsupported database type: %s", c.Type)
	}
	return nil
}

// Store is the GORM-backed allocation service persistence layer.
type Store struct {
	db      *gorm.DB
	config  *Config
	metrics Metrics
}

// SetMetrics attaches a Metrics collector. Nil detaches it.
func (s *Store) SetMetrics(m Metrics) {
	s.metrics = m
}

// New opens (creating if necessary) the configured database and brings
// its schema up to date: the embedded golang-migrate migrations for
// Postgres, AutoMigrate of every allocservice model for SQLite.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch config.Type {
	case DatabaseTypeSQLite:
		if err := os.MkdirAll(filepath.Dir(config.SQLite.Path), 0o755); err != nil {
			return nil, stackerr.Wrap(stackerr.ConfigError, err, "create database directory")
		}
		dsn := config.SQLite.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)
	case DatabaseTypePostgres:
		dialector = postgres.Open(config.Postgres.dsn())
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, stackerr.Wrap(stackerr.ConfigError, err, "connect to database")
	}

	if config.Type == DatabaseTypePostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, stackerr.Wrap(stackerr.ConfigError, err, "get underlying sql.DB")
		}
		sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)

		if err := runPostgresMigrations(sqlDB); err != nil {
			return nil, err
		}
	} else {
		// SQLite is single-node: AutoMigrate has no concurrent-migrator
		// race to guard against, so the versioned migration path is
		// reserved for Postgres.
		if err := db.AutoMigrate(models.AllModels()...); err != nil {
			return nil, stackerr.Wrap(stackerr.ConfigError, err, "run database migration")
		}
	}

	return &Store{db: db, config: config}, nil
}

// DB exposes the underlying connection for advanced queries and tests.
func (s *Store) DB() *gorm.DB { return s.db }

// ctx scopes the store's session to ctx via WithContext, the GORM idiom for
// request-scoped cancellation and tracing propagation.
func (s *Store) ctx(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }
