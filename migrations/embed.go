// Package migrations embeds the SQL migrations applied to the tickets database.
package migrations

import "embed"

// FS holds the numbered *.up.sql / *.down.sql migration files.
//
//go:embed *.sql
var FS embed.FS
