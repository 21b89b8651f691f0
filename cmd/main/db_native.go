//go:build !cgo_sqlite

package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// initDB opens the database with the pure Go driver, which takes options as
// _pragma=name(value) DSN parameters.
func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite", dataSource)
}
