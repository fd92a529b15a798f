package migrations

import "embed"

// Files holds the forward-only SQLite migrations.
//
//go:embed *.sql
var Files embed.FS
