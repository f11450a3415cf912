// Package migrations embeds the local state schema migration files.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
