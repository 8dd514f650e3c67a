package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AbsenteePenalty is the score given to a registered user who skipped a
// race, when the absentee policy is enabled. It counts toward the user's
// running total the same way a prediction's points do.
type AbsenteePenalty struct {
	bun.BaseModel `bun:"table:absentee_penalties,alias:ap"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID    int64     `bun:"user_id,notnull,unique:absentee_user_race" json:"userID"`
	RaceID    int64     `bun:"race_id,notnull,unique:absentee_user_race" json:"raceID"`
	Points    int       `bun:"points,notnull" json:"points"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}
