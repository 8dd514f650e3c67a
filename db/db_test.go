package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/f1picks/config"
	"github.com/padraicbc/f1picks/models"
)

func TestOpenSQLiteEnforcesForeignKeys(t *testing.T) {
	ctx := context.Background()
	bdb, err := Open(config.DriverSQLite, "file:f1picks_db_open?mode=memory&cache=shared", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	var enabled int
	require.NoError(t, bdb.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)

	require.NoError(t, CreateTables(ctx, bdb))

	now := time.Now().UTC()
	race := &models.Race{Name: "Imola", StartsAt: now.Add(time.Hour), CutoffAt: now, CreatedAt: now}
	_, err = bdb.NewInsert().Model(race).Exec(ctx)
	require.NoError(t, err)

	orphan := &models.Prediction{UserID: 4242, RaceID: race.ID, BiggestLoser: "perez", CreatedAt: now}
	_, err = bdb.NewInsert().Model(orphan).Exec(ctx)
	assert.ErrorContains(t, err, "FOREIGN KEY")
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "", false)
	assert.EqualError(t, err, `unsupported driver "oracle"`)
}
