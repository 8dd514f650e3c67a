package models

import "strings"

// Tracked finishing positions. Predictions and results both fill exactly
// these slots.
var (
	DriverPositions      = []int{1, 2, 3, 10, 11, 19, 20}
	ConstructorPositions = []int{1, 2, 5, 6, 10}
)

// Slot is one tracked finishing position and the identity placed in it.
type Slot struct {
	Position int
	Identity string
}

// DriverGrid holds a driver identity for each tracked driver position.
// Embedded with a column prefix in Prediction and RaceResult.
type DriverGrid struct {
	P1  string `bun:"p1,notnull" json:"p1" validate:"required,max=64"`
	P2  string `bun:"p2,notnull" json:"p2" validate:"required,max=64"`
	P3  string `bun:"p3,notnull" json:"p3" validate:"required,max=64"`
	P10 string `bun:"p10,notnull" json:"p10" validate:"required,max=64"`
	P11 string `bun:"p11,notnull" json:"p11" validate:"required,max=64"`
	P19 string `bun:"p19,notnull" json:"p19" validate:"required,max=64"`
	P20 string `bun:"p20,notnull" json:"p20" validate:"required,max=64"`
}

// Slots returns the grid in DriverPositions order.
func (g DriverGrid) Slots() []Slot {
	return []Slot{
		{Position: 1, Identity: g.P1},
		{Position: 2, Identity: g.P2},
		{Position: 3, Identity: g.P3},
		{Position: 10, Identity: g.P10},
		{Position: 11, Identity: g.P11},
		{Position: 19, Identity: g.P19},
		{Position: 20, Identity: g.P20},
	}
}

func (g *DriverGrid) normalize() {
	for _, f := range []*string{&g.P1, &g.P2, &g.P3, &g.P10, &g.P11, &g.P19, &g.P20} {
		*f = strings.TrimSpace(*f)
	}
}

// ConstructorGrid holds a constructor identity for each tracked constructor position.
type ConstructorGrid struct {
	P1  string `bun:"p1,notnull" json:"p1" validate:"required,max=64"`
	P2  string `bun:"p2,notnull" json:"p2" validate:"required,max=64"`
	P5  string `bun:"p5,notnull" json:"p5" validate:"required,max=64"`
	P6  string `bun:"p6,notnull" json:"p6" validate:"required,max=64"`
	P10 string `bun:"p10,notnull" json:"p10" validate:"required,max=64"`
}

// Slots returns the grid in ConstructorPositions order.
func (g ConstructorGrid) Slots() []Slot {
	return []Slot{
		{Position: 1, Identity: g.P1},
		{Position: 2, Identity: g.P2},
		{Position: 5, Identity: g.P5},
		{Position: 6, Identity: g.P6},
		{Position: 10, Identity: g.P10},
	}
}

func (g *ConstructorGrid) normalize() {
	for _, f := range []*string{&g.P1, &g.P2, &g.P5, &g.P6, &g.P10} {
		*f = strings.TrimSpace(*f)
	}
}
