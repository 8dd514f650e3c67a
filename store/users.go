package store

import (
	"context"

	"github.com/padraicbc/f1picks/models"
)

func (s *BunStore) CreateUser(ctx context.Context, u *models.User) error {
	u.Normalize()
	if err := u.Validate(); err != nil {
		return err
	}
	u.TotalPoints = 0
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.timestamp()
	}
	_, err := s.db.NewInsert().Model(u).Exec(ctx)
	return translate("create user", err)
}

func (s *BunStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u := new(models.User)
	if err := s.db.NewSelect().Model(u).Where("u.id = ?", id).Scan(ctx); err != nil {
		return nil, translate("get user", err)
	}
	return u, nil
}

func (s *BunStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := new(models.User)
	if err := s.db.NewSelect().Model(u).Where("u.username = ?", username).Scan(ctx); err != nil {
		return nil, translate("get user by username", err)
	}
	return u, nil
}

// ListUsers returns every user in registration order.
func (s *BunStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.NewSelect().Model(&users).Order("u.id ASC").Scan(ctx); err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

// UpdateUserTotal adds delta to the user's running total in a single
// statement so concurrent writers never lose an update.
func (s *BunStore) UpdateUserTotal(ctx context.Context, id int64, delta int) error {
	const op = "update user total"
	if delta == 0 {
		_, err := s.GetUser(ctx, id)
		return err
	}
	res, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("total_points = total_points + ?", delta).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return translate(op, err)
	}
	return expectOne(op, res, "user", id)
}
