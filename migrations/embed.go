// Package migrations embeds the goose SQL migrations so the server binary
// can bring a fresh database up to date on startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
