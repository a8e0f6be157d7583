package store

import (
	"database/sql"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/marmos91/stackhaus/internal/allocservice/store/migrations"
	"github.com/marmos91/stackhaus/internal/logger"
	"github.com/marmos91/stackhaus/internal/stackerr"
)

// runPostgresMigrations applies every embedded migration to db using
// golang-migrate. golang-migrate takes a Postgres advisory lock for the
// duration of the run, so concurrent allocation-daemon instances
// starting up at once serialize rather than race.
func runPostgresMigrations(db *sql.DB) error {
	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return stackerr.Wrap(stackerr.ConfigError, err, "create postgres migration driver")
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return stackerr.Wrap(stackerr.ConfigError, err, "open embedded migrations")
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return stackerr.Wrap(stackerr.ConfigError, err, "create migrate instance")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return stackerr.Wrap(stackerr.ConfigError, err, "apply migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return stackerr.Wrap(stackerr.ConfigError, err, "read migration version")
	}
	if dirty {
		logger.Error("database schema is in a dirty state; manual intervention required", "version", version)
	}
	return nil
}
