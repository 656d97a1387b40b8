package migrations

import "embed"

// FS contains embedded SQLite migrations for recognition storage.
//
//go:embed *.sql
var FS embed.FS
