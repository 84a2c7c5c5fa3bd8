// Package migrations embeds the goose SQL migrations for the numbers database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
