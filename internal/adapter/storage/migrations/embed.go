package migrations

import "embed"

// SQLite contains embedded migrations for the SQLite store.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// MySQL contains embedded migrations for the MySQL store.
//
//go:embed mysql/*.sql
var MySQL embed.FS
