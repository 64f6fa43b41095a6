package migrations

import "embed"

// FS contains embedded SQLite migrations for couplet storage.
//
//go:embed *.sql
var FS embed.FS
