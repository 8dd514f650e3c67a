package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// RaceResult is the official outcome of a race, shaped like a Prediction.
// At most one exists per race; a correction replaces it and re-runs ingestion.
type RaceResult struct {
	bun.BaseModel `bun:"table:race_results,alias:rr"`

	ID     int64 `bun:"id,pk,autoincrement" json:"id"`
	RaceID int64 `bun:"race_id,notnull,unique" json:"raceID"`

	Drivers      DriverGrid      `bun:"embed:driver_" json:"drivers"`
	Constructors ConstructorGrid `bun:"embed:constructor_" json:"constructors"`

	BiggestLoser        string  `bun:"biggest_loser,notnull" json:"biggestLoser" validate:"required,max=64"`
	SprintBiggestLoser  *string `bun:"sprint_biggest_loser" json:"sprintBiggestLoser,omitempty" validate:"omitempty,max=64"`
	SprintBiggestGainer *string `bun:"sprint_biggest_gainer" json:"sprintBiggestGainer,omitempty" validate:"omitempty,max=64"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// Winner is the driver classified first.
func (r *RaceResult) Winner() string {
	return r.Drivers.P1
}

// ConstructorWinner is the constructor classified first.
func (r *RaceResult) ConstructorWinner() string {
	return r.Constructors.P1
}

func (r *RaceResult) Normalize() {
	r.Drivers.normalize()
	r.Constructors.normalize()
	r.BiggestLoser = strings.TrimSpace(r.BiggestLoser)
	r.SprintBiggestLoser = trimOptional(r.SprintBiggestLoser)
	r.SprintBiggestGainer = trimOptional(r.SprintBiggestGainer)
}

func (r *RaceResult) Validate() error {
	return validateStruct("race result", r)
}
