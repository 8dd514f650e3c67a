package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/padraicbc/f1picks/db/dbtest"
	"github.com/padraicbc/f1picks/models"
	"github.com/padraicbc/f1picks/store"
)

func TestCopy(t *testing.T) {
	ctx := context.Background()
	src := dbtest.New(t)
	dst := dbtest.New(t)

	race := dbtest.AddRace(t, src, "Zandvoort", true)
	u := dbtest.AddUser(t, src, "max")
	yuki := dbtest.AddUser(t, src, "yuki")
	p := dbtest.SamplePrediction(u.ID, race.ID)
	p.SprintBiggestGainer = strptr("tsunoda")
	dbtest.AddPrediction(t, src, p)
	require.NoError(t, store.New(src).SaveResult(ctx, dbtest.SampleResult(race.ID)))
	require.NoError(t, store.New(src).UpsertPenalty(ctx, &models.AbsenteePenalty{UserID: yuki.ID, RaceID: race.ID, Points: -3}))

	steps, err := Copy(ctx, src, dst, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []Step{
		{"users", 2}, {"races", 1}, {"predictions", 1}, {"race_results", 1}, {"absentee_penalties", 1},
	}, steps)

	st := store.New(dst)
	got, err := st.GetPrediction(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Drivers, got.Drivers)
	require.NotNil(t, got.SprintBiggestGainer)
	assert.Equal(t, "tsunoda", *got.SprintBiggestGainer)

	res, err := st.GetResult(ctx, race.ID)
	require.NoError(t, err)
	require.NotNil(t, res)

	// A second run finds everything in place and inserts nothing new.
	_, err = Copy(ctx, src, dst, zap.NewNop())
	require.NoError(t, err)
	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func strptr(s string) *string { return &s }
