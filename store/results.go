package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/padraicbc/f1picks/apperr"
	"github.com/padraicbc/f1picks/models"
)

// GetResult returns the race's result, or nil without error when none has
// been entered yet.
func (s *BunStore) GetResult(ctx context.Context, raceID int64) (*models.RaceResult, error) {
	r := new(models.RaceResult)
	err := s.db.NewSelect().Model(r).Where("rr.race_id = ?", raceID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("get result", err)
	}
	return r, nil
}

// SaveResult stores the first result for a race. A second call for the same
// race is a Conflict; corrections go through ReplaceResult.
func (s *BunStore) SaveResult(ctx context.Context, r *models.RaceResult) error {
	const op = "save result"
	r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.raceExists(ctx, r.RaceID); err != nil {
		return err
	}
	now := s.timestamp()
	r.CreatedAt, r.UpdatedAt = now, now
	_, err := s.db.NewInsert().Model(r).Exec(ctx)
	return translate(op, err)
}

// ReplaceResult overwrites the stored result for r.RaceID.
func (s *BunStore) ReplaceResult(ctx context.Context, r *models.RaceResult) error {
	const op = "replace result"
	r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}
	existing, err := s.GetResult(ctx, r.RaceID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.New(apperr.KindNotFound, op, "race %d has no result to replace", r.RaceID)
	}

	r.ID = existing.ID
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.timestamp()
	res, err := s.db.NewUpdate().
		Model(r).
		ExcludeColumn("id", "race_id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return translate(op, err)
	}
	return expectOne(op, res, "result", r.ID)
}
