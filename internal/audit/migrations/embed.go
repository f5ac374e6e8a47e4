// Package migrations embeds the audit journal schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
