package appfs

import "embed"

// FS holds the SQL migrations of the postgres storage engine.
//
//go:embed migrations/*.sql
var FS embed.FS
