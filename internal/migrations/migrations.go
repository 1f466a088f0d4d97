package migrations

import "embed"

// Files contains the SQL migrations embedded into the binary, applied in
// lexical order (e.g. 0001_favorites.sql).
//
//go:embed *.sql
var Files embed.FS
