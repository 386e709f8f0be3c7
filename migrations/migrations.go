// Package migrations embeds the SurrealQL schema files applied by
// database.Migrate. Files run in lexical order; seed data is not part of it.
package migrations

import "embed"

//go:embed *.surql
var FS embed.FS
