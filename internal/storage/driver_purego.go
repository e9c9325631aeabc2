//go:build purego

package storage

// Built with -tags purego: modernc.org/sqlite, no C compiler required.
//
//   CGO_ENABLED=0 go build -tags purego ./...

import (
	"database/sql/driver"
	"fmt"

	"modernc.org/sqlite"

	"github.com/runnerr0/histidx/internal/history"
)

const (
	// DriverName is the database/sql driver used by Open.
	DriverName = "sqlite"

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(caseFoldFunc, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return history.Fold(v), nil
			case []byte:
				return history.Fold(string(v)), nil
			default:
				return nil, fmt.Errorf("%s: unsupported argument type %T", caseFoldFunc, v)
			}
		})
}

func dsn(path string) string {
	return path + "?_pragma=foreign_keys(1)"
}
