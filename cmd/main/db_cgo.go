//go:build cgo_sqlite

package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// initDB opens the database with the cgo driver, which takes mattn-style
// DSN options such as _journal_mode=WAL.
func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite3", dataSource)
}
