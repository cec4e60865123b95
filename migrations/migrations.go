// Package migrations embeds the postgres schema migrations so the server and
// the migrate CLI do not depend on the working directory.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
