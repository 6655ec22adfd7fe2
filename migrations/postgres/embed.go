// Package migrations embebe el schema SQL del backend postgres.
package migrations

import "embed"

// FS contiene las migraciones, aplicadas en orden lexicográfico.
//
//go:embed *.sql
var FS embed.FS
