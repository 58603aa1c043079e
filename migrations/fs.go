// Package migrations embeds the SQL schema migrations so a standalone
// binary can create its own database schema on startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
