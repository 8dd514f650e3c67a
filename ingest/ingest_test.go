package ingest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/f1picks/apperr"
	"github.com/padraicbc/f1picks/db/dbtest"
	"github.com/padraicbc/f1picks/models"
	"github.com/padraicbc/f1picks/store"
)

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate() {
	m.Called()
}

type fixture struct {
	db    *bun.DB
	store *store.BunStore
	race  *models.Race
	alice *models.User
	bob   *models.User
	carol *models.User
}

// newFixture sets up a race where alice predicts the sample result exactly
// (29 points), bob swaps his winner for the third-placed driver (25 points)
// and carol does not predict.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	bdb := dbtest.New(t)
	f := &fixture{
		db:    bdb,
		store: store.New(bdb),
		race:  dbtest.AddRace(t, bdb, "Suzuka", false),
		alice: dbtest.AddUser(t, bdb, "alice"),
		bob:   dbtest.AddUser(t, bdb, "bob"),
		carol: dbtest.AddUser(t, bdb, "carol"),
	}
	dbtest.AddPrediction(t, bdb, dbtest.SamplePrediction(f.alice.ID, f.race.ID))
	bobs := dbtest.SamplePrediction(f.bob.ID, f.race.ID)
	bobs.Drivers.P1 = "leclerc"
	dbtest.AddPrediction(t, bdb, bobs)
	return f
}

func (f *fixture) totals(t *testing.T) map[string]int {
	t.Helper()
	users, err := f.store.ListUsers(context.Background())
	require.NoError(t, err)
	out := map[string]int{}
	for _, u := range users {
		out[u.Username] = u.TotalPoints
	}
	return out
}

func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	totals, err := f.store.UserTotals(context.Background())
	require.NoError(t, err)
	for _, ut := range totals {
		assert.Equal(t, ut.Recomputed(), ut.User.TotalPoints, "user %s", ut.User.Username)
	}
}

func TestIngestRequiresResult(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := &mockInvalidator{}
	svc := NewService(f.store, Config{AbsenteePenalty: true, AbsenteeOffset: 5}, zap.NewNop(), inv)

	rep, err := svc.Ingest(ctx, f.race.ID)
	require.Error(t, err)
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, apperr.ErrPrecondition)
	assert.Contains(t, err.Error(), "Suzuka")

	preds, err := f.store.ListPredictions(ctx, f.race.ID)
	require.NoError(t, err)
	for _, p := range preds {
		assert.Equal(t, 0, p.Points)
		assert.Nil(t, p.ScoredAt)
	}
	pens, err := f.store.ListPenalties(ctx, f.race.ID)
	require.NoError(t, err)
	assert.Empty(t, pens)
	assert.Equal(t, map[string]int{"alice": 0, "bob": 0, "carol": 0}, f.totals(t))
	inv.AssertNotCalled(t, "Invalidate")
}

func TestIngestUnknownRace(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.store, Config{}, zap.NewNop())

	_, err := svc.Ingest(context.Background(), 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestIngestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := &mockInvalidator{}
	inv.On("Invalidate").Return()
	svc := NewService(f.store, Config{}, zap.NewNop(), inv)

	require.NoError(t, f.store.SaveResult(ctx, dbtest.SampleResult(f.race.ID)))

	rep, err := svc.Ingest(ctx, f.race.ID)
	require.NoError(t, err)
	require.Len(t, rep.Scored, 2)
	assert.Equal(t, 29, rep.Scored[0].Points)
	assert.Equal(t, 25, rep.Scored[1].Points)
	assert.Empty(t, rep.Penalties)
	assert.Equal(t, map[string]int{"alice": 29, "bob": 25, "carol": 0}, f.totals(t))

	rep, err = svc.Ingest(ctx, f.race.ID)
	require.NoError(t, err)
	assert.Equal(t, 29, rep.Scored[0].Previous)
	assert.Equal(t, map[string]int{"alice": 29, "bob": 25, "carol": 0}, f.totals(t))

	preds, err := f.store.ListPredictions(ctx, f.race.ID)
	require.NoError(t, err)
	assert.Equal(t, 29, preds[0].Points)
	assert.Equal(t, 25, preds[1].Points)

	f.assertConsistent(t)
	inv.AssertNumberOfCalls(t, "Invalidate", 2)
}

func TestRecordResultAndCorrection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewService(f.store, Config{}, zap.NewNop())

	_, err := svc.RecordResult(ctx, dbtest.SampleResult(f.race.ID), false)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"alice": 29, "bob": 25, "carol": 0}, f.totals(t))

	t.Run("second result is a conflict", func(t *testing.T) {
		_, err := svc.RecordResult(ctx, dbtest.SampleResult(f.race.ID), false)
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Equal(t, map[string]int{"alice": 29, "bob": 25, "carol": 0}, f.totals(t))
	})

	t.Run("correction moves totals by the difference", func(t *testing.T) {
		corrected := dbtest.SampleResult(f.race.ID)
		corrected.Drivers.P1, corrected.Drivers.P3 = "leclerc", "verstappen"

		rep, err := svc.RecordResult(ctx, corrected, true)
		require.NoError(t, err)
		require.Len(t, rep.Scored, 2)
		assert.Equal(t, Scored{PredictionID: rep.Scored[0].PredictionID, UserID: f.alice.ID, Points: 21, Previous: 29}, rep.Scored[0])
		assert.Equal(t, map[string]int{"alice": 21, "bob": 25, "carol": 0}, f.totals(t))
		f.assertConsistent(t)
	})

	t.Run("correcting a race without a result", func(t *testing.T) {
		other := dbtest.AddRace(t, f.db, "Losail", false)
		_, err := svc.RecordResult(ctx, dbtest.SampleResult(other.ID), true)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestAbsenteePenalty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewService(f.store, Config{AbsenteePenalty: true, AbsenteeOffset: 5}, zap.NewNop())

	rep, err := svc.RecordResult(ctx, dbtest.SampleResult(f.race.ID), false)
	require.NoError(t, err)
	require.Len(t, rep.Penalties, 1)
	assert.Equal(t, Penalty{UserID: f.carol.ID, Points: 20}, rep.Penalties[0])
	assert.Equal(t, map[string]int{"alice": 29, "bob": 25, "carol": 20}, f.totals(t))
	f.assertConsistent(t)

	t.Run("re-ingestion leaves the penalty alone", func(t *testing.T) {
		_, err := svc.Ingest(ctx, f.race.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"alice": 29, "bob": 25, "carol": 20}, f.totals(t))
		pens, err := f.store.ListPenalties(ctx, f.race.ID)
		require.NoError(t, err)
		assert.Len(t, pens, 1)
	})

	t.Run("correction follows the new lowest score", func(t *testing.T) {
		corrected := dbtest.SampleResult(f.race.ID)
		corrected.Drivers.P1, corrected.Drivers.P3 = "leclerc", "verstappen"
		_, err := svc.RecordResult(ctx, corrected, true)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"alice": 21, "bob": 25, "carol": 16}, f.totals(t))
		f.assertConsistent(t)
	})

	t.Run("turning the policy off withdraws the penalty", func(t *testing.T) {
		off := NewService(f.store, Config{}, zap.NewNop())
		rep, err := off.Ingest(ctx, f.race.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{f.carol.ID}, rep.Removed)
		assert.Equal(t, map[string]int{"alice": 21, "bob": 25, "carol": 0}, f.totals(t))
		f.assertConsistent(t)
	})
}

func TestAbsenteePenaltyNeedsPredictions(t *testing.T) {
	ctx := context.Background()
	bdb := dbtest.New(t)
	st := store.New(bdb)
	race := dbtest.AddRace(t, bdb, "Baku", false)
	dbtest.AddUser(t, bdb, "dave")

	svc := NewService(st, Config{AbsenteePenalty: true, AbsenteeOffset: 5}, zap.NewNop())
	rep, err := svc.RecordResult(ctx, dbtest.SampleResult(race.ID), false)
	require.NoError(t, err)
	assert.Empty(t, rep.Scored)
	assert.Empty(t, rep.Penalties)
}

func TestIngestSkipsOrphanPrediction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.db.ExecContext(ctx, "PRAGMA foreign_keys = OFF")
	require.NoError(t, err)
	orphan := dbtest.AddPrediction(t, f.db, dbtest.SamplePrediction(4242, f.race.ID))
	_, err = f.db.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	svc := NewService(f.store, Config{}, zap.NewNop())
	rep, err := svc.RecordResult(ctx, dbtest.SampleResult(f.race.ID), false)
	require.NoError(t, err)

	require.Len(t, rep.Scored, 2)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, orphan.ID, rep.Skipped[0].PredictionID)
	assert.Equal(t, int64(4242), rep.Skipped[0].UserID)
	assert.Contains(t, rep.Skipped[0].Reason, "not found")
	assert.Equal(t, map[string]int{"alice": 29, "bob": 25, "carol": 0}, f.totals(t))

	got, err := f.store.GetPrediction(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Points)
	assert.Nil(t, got.ScoredAt)
	f.assertConsistent(t)
}

func TestConcurrentReingest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewService(f.store, Config{AbsenteePenalty: true, AbsenteeOffset: 5}, zap.NewNop())

	_, err := svc.RecordResult(ctx, dbtest.SampleResult(f.race.ID), false)
	require.NoError(t, err)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := svc.Ingest(ctx, f.race.ID)
				errs <- err
				return
			}
			corrected := dbtest.SampleResult(f.race.ID)
			corrected.Drivers.P1, corrected.Drivers.P3 = "leclerc", "verstappen"
			_, err := svc.RecordResult(ctx, corrected, true)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, map[string]int{"alice": 21, "bob": 25, "carol": 16}, f.totals(t))
	pens, err := f.store.ListPenalties(ctx, f.race.ID)
	require.NoError(t, err)
	assert.Len(t, pens, 1)
	f.assertConsistent(t)
}
