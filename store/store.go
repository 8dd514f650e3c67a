// Package store persists users, races, predictions, results and absentee
// penalties through bun. The same code runs on PostgreSQL, MySQL and SQLite.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/padraicbc/f1picks/models"
)

// Store is the entity store used by ingestion, the leaderboard and the HTTP
// handlers. Implementations returned by RunInTx share one transaction.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserTotal(ctx context.Context, id int64, delta int) error

	CreateRace(ctx context.Context, r *models.Race) error
	GetRace(ctx context.Context, id int64) (*models.Race, error)
	LockRace(ctx context.Context, id int64) (*models.Race, error)
	ListRaces(ctx context.Context) ([]models.Race, error)
	SetSprint(ctx context.Context, id int64, sprint bool) error

	GetResult(ctx context.Context, raceID int64) (*models.RaceResult, error)
	SaveResult(ctx context.Context, r *models.RaceResult) error
	ReplaceResult(ctx context.Context, r *models.RaceResult) error

	CreatePrediction(ctx context.Context, p *models.Prediction) error
	GetPrediction(ctx context.Context, id int64) (*models.Prediction, error)
	GetUserPrediction(ctx context.Context, userID, raceID int64) (*models.Prediction, error)
	ListPredictions(ctx context.Context, raceID int64) ([]models.Prediction, error)
	ListUserPredictions(ctx context.Context, userID int64) ([]models.Prediction, error)
	ListAllPredictions(ctx context.Context) ([]models.Prediction, error)
	WritePredictionPoints(ctx context.Context, id int64, points int) error

	ListPenalties(ctx context.Context, raceID int64) ([]models.AbsenteePenalty, error)
	UpsertPenalty(ctx context.Context, p *models.AbsenteePenalty) error
	DeletePenalty(ctx context.Context, id int64) error

	UserTotals(ctx context.Context) ([]UserTotal, error)
}

// UserTotal pairs a user's maintained running total with the values it
// should equal when recomputed from stored points.
type UserTotal struct {
	User             models.User
	PredictionCount  int
	PredictionPoints int
	PenaltyPoints    int
}

// Recomputed is the total derived from stored prediction and penalty points.
func (t UserTotal) Recomputed() int {
	return t.PredictionPoints + t.PenaltyPoints
}

// BunStore implements Store on a bun.DB or an open bun.Tx.
type BunStore struct {
	db  bun.IDB
	now func() time.Time
}

var _ Store = (*BunStore)(nil)

func New(db bun.IDB) *BunStore {
	return &BunStore{db: db, now: time.Now}
}

// RunInTx runs fn inside a transaction. Calls made on an already
// transactional store join the outer transaction.
func (s *BunStore) RunInTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error {
	bdb, ok := s.db.(*bun.DB)
	if !ok {
		return fn(ctx, s)
	}

	tx, err := bdb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, &BunStore{db: tx, now: s.now}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// rowLocks reports whether SELECT ... FOR UPDATE is available. SQLite
// serialises writers on its own.
func (s *BunStore) rowLocks() bool {
	return s.db.Dialect().Name() != dialect.SQLite
}

func (s *BunStore) timestamp() time.Time {
	return s.now().UTC()
}
