// Package assets embeds the SQL migrations shipped with the binary.
package assets

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
