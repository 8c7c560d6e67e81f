// Package migrations embeds the SQL migrations for the quiz store.
package migrations

import "embed"

// FS holds the NNN_name.up.sql files, applied in order.
//
//go:embed *.sql
var FS embed.FS
