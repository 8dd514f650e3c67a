package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/padraicbc/f1picks/models"
)

func (s *BunStore) ListPenalties(ctx context.Context, raceID int64) ([]models.AbsenteePenalty, error) {
	var ps []models.AbsenteePenalty
	err := s.db.NewSelect().
		Model(&ps).
		Where("ap.race_id = ?", raceID).
		Order("ap.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, translate("list penalties", err)
	}
	return ps, nil
}

// UpsertPenalty writes p.Points for (p.UserID, p.RaceID), inserting the row
// when it does not exist yet.
func (s *BunStore) UpsertPenalty(ctx context.Context, p *models.AbsenteePenalty) error {
	const op = "upsert penalty"

	existing := new(models.AbsenteePenalty)
	err := s.db.NewSelect().
		Model(existing).
		Where("ap.user_id = ?", p.UserID).
		Where("ap.race_id = ?", p.RaceID).
		Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if p.CreatedAt.IsZero() {
			p.CreatedAt = s.timestamp()
		}
		_, err = s.db.NewInsert().Model(p).Exec(ctx)
		return translate(op, err)
	case err != nil:
		return translate(op, err)
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	_, err = s.db.NewUpdate().
		Model(p).
		Column("points").
		WherePK().
		Exec(ctx)
	return translate(op, err)
}

func (s *BunStore) DeletePenalty(ctx context.Context, id int64) error {
	const op = "delete penalty"
	res, err := s.db.NewDelete().
		Model((*models.AbsenteePenalty)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return translate(op, err)
	}
	return expectOne(op, res, "penalty", id)
}
