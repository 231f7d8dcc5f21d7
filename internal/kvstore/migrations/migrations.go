package migrations

import "embed"

// FS holds the SQLite schema for the durable key-value store.
//
//go:embed *.sql
var FS embed.FS
