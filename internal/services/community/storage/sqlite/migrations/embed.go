package migrations

import "embed"

// FS contains embedded SQLite migrations for community storage.
//
//go:embed *.sql
var FS embed.FS
