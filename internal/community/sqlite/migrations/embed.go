package migrations

import "embed"

// FS contains embedded SQLite migrations for the community registry mirror.
//
//go:embed *.sql
var FS embed.FS
