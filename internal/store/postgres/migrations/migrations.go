// Package migrations holds the embedded schema migrations.
package migrations

import (
	"embed"

	"github.com/uptrace/bun/migrate"
)

// Migrations is the ordered set discovered from the embedded SQL files.
var Migrations = migrate.NewMigrations()

//go:embed *.sql
var sqlMigrations embed.FS

func init() {
	if err := Migrations.Discover(sqlMigrations); err != nil {
		panic(err)
	}
}
