//go:build !purego

package storage

// Default build: github.com/mattn/go-sqlite3 (requires CGO). The casefold
// function is registered on every new connection through a ConnectHook.

import (
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/histidx/internal/history"
)

const (
	// DriverName is the database/sql driver used by Open.
	DriverName = "sqlite3_histidx"

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(caseFoldFunc, history.Fold, true)
		},
	})
}

func dsn(path string) string {
	return path + "?_foreign_keys=on"
}
