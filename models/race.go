package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Race is a grand prix weekend. Predictions are accepted until CutoffAt,
// normally the start of first practice. Sprint weekends unlock the two sprint
// wildcards.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:rc"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name" validate:"required,max=128"`
	StartsAt  time.Time `bun:"starts_at,notnull" json:"startsAt" validate:"required"`
	CutoffAt  time.Time `bun:"cutoff_at,notnull" json:"cutoffAt" validate:"required,ltefield=StartsAt"`
	IsSprint  bool      `bun:"is_sprint,notnull,default:false" json:"isSprint"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}

func (r *Race) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.StartsAt = r.StartsAt.UTC()
	r.CutoffAt = r.CutoffAt.UTC()
}

func (r *Race) Validate() error {
	return validateStruct("race", r)
}

// AcceptsPredictions reports whether a prediction made at now is before the cutoff.
func (r *Race) AcceptsPredictions(now time.Time) bool {
	return now.Before(r.CutoffAt)
}
