// Package migrations holds the schema migrations of the Postgres store.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the ordered migration set applied by `standings migrate`.
var Migrations = migrate.NewMigrations()
