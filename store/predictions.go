package store

import (
	"context"

	"github.com/padraicbc/f1picks/models"
)

// CreatePrediction stores a new prediction with zero points. The cutoff is
// the caller's concern; the (user, race) uniqueness is enforced here.
func (s *BunStore) CreatePrediction(ctx context.Context, p *models.Prediction) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := s.GetUser(ctx, p.UserID); err != nil {
		return err
	}
	if err := s.raceExists(ctx, p.RaceID); err != nil {
		return err
	}
	p.Points = 0
	p.ScoredAt = nil
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.timestamp()
	}
	_, err := s.db.NewInsert().Model(p).Exec(ctx)
	return translate("create prediction", err)
}

func (s *BunStore) GetPrediction(ctx context.Context, id int64) (*models.Prediction, error) {
	p := new(models.Prediction)
	if err := s.db.NewSelect().Model(p).Where("p.id = ?", id).Scan(ctx); err != nil {
		return nil, translate("get prediction", err)
	}
	return p, nil
}

func (s *BunStore) GetUserPrediction(ctx context.Context, userID, raceID int64) (*models.Prediction, error) {
	p := new(models.Prediction)
	err := s.db.NewSelect().
		Model(p).
		Where("p.user_id = ?", userID).
		Where("p.race_id = ?", raceID).
		Scan(ctx)
	if err != nil {
		return nil, translate("get user prediction", err)
	}
	return p, nil
}

// ListPredictions returns a race's predictions in submission order.
func (s *BunStore) ListPredictions(ctx context.Context, raceID int64) ([]models.Prediction, error) {
	var ps []models.Prediction
	err := s.db.NewSelect().
		Model(&ps).
		Where("p.race_id = ?", raceID).
		Order("p.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, translate("list predictions", err)
	}
	return ps, nil
}

func (s *BunStore) ListUserPredictions(ctx context.Context, userID int64) ([]models.Prediction, error) {
	var ps []models.Prediction
	err := s.db.NewSelect().
		Model(&ps).
		Relation("Race").
		Where("p.user_id = ?", userID).
		Order("p.race_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, translate("list user predictions", err)
	}
	return ps, nil
}

// ListAllPredictions is the admin view: every prediction with its user and race.
func (s *BunStore) ListAllPredictions(ctx context.Context) ([]models.Prediction, error) {
	var ps []models.Prediction
	err := s.db.NewSelect().
		Model(&ps).
		Relation("User").
		Relation("Race").
		Order("p.race_id ASC", "p.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, translate("list all predictions", err)
	}
	return ps, nil
}

// WritePredictionPoints overwrites the prediction's points and stamps the
// scoring time.
func (s *BunStore) WritePredictionPoints(ctx context.Context, id int64, points int) error {
	const op = "write prediction points"
	res, err := s.db.NewUpdate().
		Model((*models.Prediction)(nil)).
		Set("points = ?", points).
		Set("scored_at = ?", s.timestamp()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return translate(op, err)
	}
	return expectOne(op, res, "prediction", id)
}
