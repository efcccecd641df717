// Package db embeds the SQL migrations so production builds can run them
// without shipping the migration files separately.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
