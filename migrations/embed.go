// Package migrations embeds the schema migrations so a deployed binary can
// migrate its own database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
