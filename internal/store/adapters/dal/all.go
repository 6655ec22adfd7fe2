// Package dal importa todos los adapters para auto-registro.
//
// Uso (en main.go):
//
//	import _ "github.com/dropDatabas3/mailadmin/internal/store/adapters/dal"
package dal

import (
	_ "github.com/dropDatabas3/mailadmin/internal/store/adapters/fs"
	_ "github.com/dropDatabas3/mailadmin/internal/store/adapters/pg"
	_ "github.com/dropDatabas3/mailadmin/internal/store/adapters/s3"
)
