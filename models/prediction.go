package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Prediction is one user's forecast for one race. Everything except Points
// and ScoredAt is fixed once stored; those two are written by ingestion only.
type Prediction struct {
	bun.BaseModel `bun:"table:predictions,alias:p"`

	ID     int64 `bun:"id,pk,autoincrement" json:"id"`
	UserID int64 `bun:"user_id,notnull,unique:predictions_user_race" json:"userID"`
	RaceID int64 `bun:"race_id,notnull,unique:predictions_user_race" json:"raceID"`

	Drivers      DriverGrid      `bun:"embed:driver_" json:"drivers"`
	Constructors ConstructorGrid `bun:"embed:constructor_" json:"constructors"`

	BiggestLoser        string  `bun:"biggest_loser,notnull" json:"biggestLoser" validate:"required,max=64"`
	SprintBiggestLoser  *string `bun:"sprint_biggest_loser" json:"sprintBiggestLoser,omitempty" validate:"omitempty,max=64"`
	SprintBiggestGainer *string `bun:"sprint_biggest_gainer" json:"sprintBiggestGainer,omitempty" validate:"omitempty,max=64"`

	RaceWinner        *string `bun:"race_winner" json:"raceWinner,omitempty" validate:"omitempty,max=64"`
	ConstructorWinner *string `bun:"constructor_winner" json:"constructorWinner,omitempty" validate:"omitempty,max=64"`

	Points    int        `bun:"points,notnull,default:0" json:"points"`
	ScoredAt  *time.Time `bun:"scored_at" json:"scoredAt,omitempty"`
	CreatedAt time.Time  `bun:"created_at,notnull" json:"createdAt"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	Race *Race `bun:"rel:belongs-to,join:race_id=id" json:"-"`
}

// Normalize trims identities; blank optional picks become nil.
func (p *Prediction) Normalize() {
	p.Drivers.normalize()
	p.Constructors.normalize()
	p.BiggestLoser = strings.TrimSpace(p.BiggestLoser)
	p.SprintBiggestLoser = trimOptional(p.SprintBiggestLoser)
	p.SprintBiggestGainer = trimOptional(p.SprintBiggestGainer)
	p.RaceWinner = trimOptional(p.RaceWinner)
	p.ConstructorWinner = trimOptional(p.ConstructorWinner)
}

func (p *Prediction) Validate() error {
	return validateStruct("prediction", p)
}
