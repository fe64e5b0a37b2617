// Package migrations embeds the schema of the local session store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
