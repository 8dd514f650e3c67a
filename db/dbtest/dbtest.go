// Package dbtest opens throwaway in-memory SQLite databases with the
// application schema already created.
package dbtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/padraicbc/f1picks/config"
	"github.com/padraicbc/f1picks/db"
)

var seq atomic.Int64

// New returns an empty database that is closed when t finishes.
func New(t testing.TB) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:f1picks_%d?mode=memory&cache=shared", seq.Add(1))
	bdb, err := db.Open(config.DriverSQLite, dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	require.NoError(t, db.CreateTables(context.Background(), bdb))
	return bdb
}
