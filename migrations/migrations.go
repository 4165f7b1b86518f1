// Package migrations embeds the SQL migration files so the compiled
// binary can set up its own schema without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
