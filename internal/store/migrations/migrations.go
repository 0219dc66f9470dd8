// Package migrations embeds the goose SQL migrations applied by
// store.DB.Migrate. Grounded on the teacher's top-level migrations
// package, which embeds its .sql files the same way.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
