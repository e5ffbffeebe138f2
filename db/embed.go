// Package db exposes the SQL migrations so tests and tools can apply them without a checkout.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations that holds the goose files.
const MigrationsDir = "migrations"
