// Package migrations holds the SQL migrations compiled into the binary.
package migrations

import "embed"

// FS contains every NNN_name.sql migration file.
//
//go:embed *.sql
var FS embed.FS
