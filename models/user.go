package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// User is a player with a bcrypt-hashed password and a running points total.
// TotalPoints is only ever changed by result ingestion.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Username    string    `bun:"username,notnull,unique" json:"username" validate:"required,max=32"`
	Email       string    `bun:"email,notnull,unique" json:"email" validate:"required,email,max=254"`
	DisplayName string    `bun:"display_name,notnull" json:"displayName" validate:"max=64"`
	Password    string    `bun:"password,notnull" json:"-"`
	TotalPoints int       `bun:"total_points,notnull,default:0" json:"totalPoints"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Normalize trims user-entered fields and falls back to the username when no
// display name was given.
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
}

func (u *User) Validate() error {
	return validateStruct("user", u)
}
