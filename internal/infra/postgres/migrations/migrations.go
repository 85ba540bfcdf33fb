// Package migrations registers the Postgres schema. bun names each migration
// after the file that registers it, so every migration lives in its own
// numbered file.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
