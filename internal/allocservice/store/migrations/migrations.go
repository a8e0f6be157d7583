// Package migrations embeds the allocation service's PostgreSQL schema
// migrations for golang-migrate. SQLite deployments use GORM's
// AutoMigrate instead, since a single-node embedded database has no
// concurrent-migrator race to guard against.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
