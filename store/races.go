package store

import (
	"context"
	"database/sql"

	"github.com/padraicbc/f1picks/apperr"
	"github.com/padraicbc/f1picks/models"
)

func (s *BunStore) CreateRace(ctx context.Context, r *models.Race) error {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.timestamp()
	}
	_, err := s.db.NewInsert().Model(r).Exec(ctx)
	return translate("create race", err)
}

func (s *BunStore) GetRace(ctx context.Context, id int64) (*models.Race, error) {
	r := new(models.Race)
	if err := s.db.NewSelect().Model(r).Where("rc.id = ?", id).Scan(ctx); err != nil {
		return nil, translate("get race", err)
	}
	return r, nil
}

// LockRace loads the race and, inside a transaction, holds its row lock
// until commit. Ingestions of the same race queue behind each other.
func (s *BunStore) LockRace(ctx context.Context, id int64) (*models.Race, error) {
	r := new(models.Race)
	q := s.db.NewSelect().Model(r).Where("rc.id = ?", id)
	if s.rowLocks() {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, translate("lock race", err)
	}
	return r, nil
}

// ListRaces returns the calendar in start order.
func (s *BunStore) ListRaces(ctx context.Context) ([]models.Race, error) {
	var races []models.Race
	if err := s.db.NewSelect().Model(&races).Order("rc.starts_at ASC", "rc.id ASC").Scan(ctx); err != nil {
		return nil, translate("list races", err)
	}
	return races, nil
}

// SetSprint changes the sprint flag. Once any prediction exists for the race
// the flag is frozen and Conflict is returned.
func (s *BunStore) SetSprint(ctx context.Context, id int64, sprint bool) error {
	const op = "set sprint"

	predictions := s.db.NewSelect().
		Model((*models.Prediction)(nil)).
		ColumnExpr("1").
		Where("p.race_id = ?", id)

	res, err := s.db.NewUpdate().
		Model((*models.Race)(nil)).
		Set("is_sprint = ?", sprint).
		Where("id = ?", id).
		Where("is_sprint <> ?", sprint).
		Where("NOT EXISTS (?)", predictions).
		Exec(ctx)
	if err != nil {
		return translate(op, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return translate(op, err)
	} else if n > 0 {
		return nil
	}

	// No row changed; work out why.
	race, err := s.GetRace(ctx, id)
	if err != nil {
		return err
	}
	if race.IsSprint == sprint {
		return nil
	}
	return apperr.New(apperr.KindConflict, op, "race %d already has predictions", id)
}

func (s *BunStore) raceExists(ctx context.Context, id int64) error {
	ok, err := s.db.NewSelect().Model((*models.Race)(nil)).Where("rc.id = ?", id).Exists(ctx)
	if err != nil {
		return translate("race exists", err)
	}
	if !ok {
		return apperr.Wrap(apperr.KindNotFound, "race exists", sql.ErrNoRows)
	}
	return nil
}
