package store

import (
	"context"

	"github.com/padraicbc/f1picks/models"
)

type pointsRow struct {
	UserID int64 `bun:"user_id"`
	N      int   `bun:"n"`
	Total  int   `bun:"total"`
}

// UserTotals returns one entry per user, in registration order, with the
// stored running total next to the sums it is derived from.
func (s *BunStore) UserTotals(ctx context.Context) ([]UserTotal, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var preds []pointsRow
	err = s.db.NewSelect().
		Model((*models.Prediction)(nil)).
		Column("p.user_id").
		ColumnExpr("COUNT(*) AS n").
		ColumnExpr("COALESCE(SUM(p.points), 0) AS total").
		Group("p.user_id").
		Scan(ctx, &preds)
	if err != nil {
		return nil, translate("sum prediction points", err)
	}

	var pens []pointsRow
	err = s.db.NewSelect().
		Model((*models.AbsenteePenalty)(nil)).
		Column("ap.user_id").
		ColumnExpr("COUNT(*) AS n").
		ColumnExpr("COALESCE(SUM(ap.points), 0) AS total").
		Group("ap.user_id").
		Scan(ctx, &pens)
	if err != nil {
		return nil, translate("sum penalty points", err)
	}

	byUser := make(map[int64]*UserTotal, len(users))
	out := make([]UserTotal, len(users))
	for i, u := range users {
		out[i] = UserTotal{User: u}
		byUser[u.ID] = &out[i]
	}
	for _, r := range preds {
		if t, ok := byUser[r.UserID]; ok {
			t.PredictionCount = r.N
			t.PredictionPoints = r.Total
		}
	}
	for _, r := range pens {
		if t, ok := byUser[r.UserID]; ok {
			t.PenaltyPoints = r.Total
		}
	}
	return out, nil
}
