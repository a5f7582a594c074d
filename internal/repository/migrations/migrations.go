// Package migrations embeds the SQL schema of the postgres driver.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
