// Package scoring compares one prediction with one race result. It does no
// I/O and returns the same breakdown for the same inputs every time.
package scoring

import (
	"fmt"

	"github.com/padraicbc/f1picks/apperr"
	"github.com/padraicbc/f1picks/models"
)

// Points awarded per category. A slot that misses scores minus the
// distance to the identity's actual position instead.
const (
	ExactMatchPoints        = 2
	WildcardPoints          = 5
	RaceWinnerPoints        = 50
	ConstructorWinnerPoints = 25
)

// Category groups breakdown items for display.
type Category string

const (
	CategoryDriver      Category = "driver"
	CategoryConstructor Category = "constructor"
	CategoryWildcard    Category = "wildcard"
	CategoryWinner      Category = "winner"
)

// Item is the contribution of a single slot, wildcard or winner pick.
// ActualPosition is zero when the predicted identity was not found.
type Item struct {
	Category       Category `json:"category"`
	Label          string   `json:"label"`
	Predicted      string   `json:"predicted"`
	Actual         string   `json:"actual,omitempty"`
	Position       int      `json:"position,omitempty"`
	ActualPosition int      `json:"actualPosition,omitempty"`
	Points         int      `json:"points"`
}

// Breakdown lists every scored item of a prediction and their sum.
type Breakdown struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

func (b *Breakdown) add(it Item) {
	b.Items = append(b.Items, it)
	b.Total += it.Points
}

// Score scores p against r for race. A nil result is a precondition error;
// a prediction or result for another race is a validation error.
func Score(race *models.Race, p *models.Prediction, r *models.RaceResult) (Breakdown, error) {
	const op = "score prediction"
	if r == nil {
		return Breakdown{}, apperr.New(apperr.KindPrecondition, op, "race has no result")
	}
	if race == nil || p == nil {
		return Breakdown{}, apperr.New(apperr.KindValidation, op, "race and prediction are required")
	}
	if p.RaceID != race.ID || r.RaceID != race.ID {
		return Breakdown{}, apperr.New(apperr.KindValidation, op,
			"race %d: prediction is for race %d, result for race %d", race.ID, p.RaceID, r.RaceID)
	}

	var b Breakdown
	scoreSlots(&b, CategoryDriver, p.Drivers.Slots(), r.Drivers.Slots())
	scoreSlots(&b, CategoryConstructor, p.Constructors.Slots(), r.Constructors.Slots())

	b.add(wildcard("biggest loser", &p.BiggestLoser, &r.BiggestLoser))
	if race.IsSprint {
		if p.SprintBiggestLoser != nil {
			b.add(wildcard("sprint biggest loser", p.SprintBiggestLoser, r.SprintBiggestLoser))
		}
		if p.SprintBiggestGainer != nil {
			b.add(wildcard("sprint biggest gainer", p.SprintBiggestGainer, r.SprintBiggestGainer))
		}
	}

	if p.RaceWinner != nil {
		b.add(winner("race winner", *p.RaceWinner, r.Winner(), RaceWinnerPoints))
	}
	if p.ConstructorWinner != nil {
		b.add(winner("constructor winner", *p.ConstructorWinner, r.ConstructorWinner(), ConstructorWinnerPoints))
	}
	return b, nil
}

// Points is Score without the breakdown.
func Points(race *models.Race, p *models.Prediction, r *models.RaceResult) (int, error) {
	b, err := Score(race, p, r)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

func scoreSlots(b *Breakdown, cat Category, predicted, actual []models.Slot) {
	for _, s := range predicted {
		pts, at := slotPoints(s, actual)
		it := Item{
			Category:       cat,
			Label:          fmt.Sprintf("%s P%d", cat, s.Position),
			Predicted:      s.Identity,
			Position:       s.Position,
			ActualPosition: at,
			Points:         pts,
		}
		if at != 0 {
			it.Actual = s.Identity
		}
		b.add(it)
	}
}

// slotPoints looks for the predicted identity anywhere in the result's slots.
// A hit on the same position is worth ExactMatchPoints; otherwise the closest
// occurrence costs its distance. An identity that is nowhere is worth 0.
func slotPoints(s models.Slot, actual []models.Slot) (points, position int) {
	if s.Identity == "" {
		return 0, 0
	}
	best := -1
	for _, a := range actual {
		if a.Identity != s.Identity {
			continue
		}
		if a.Position == s.Position {
			return ExactMatchPoints, a.Position
		}
		d := abs(s.Position - a.Position)
		if best < 0 || d < best {
			best, position = d, a.Position
		}
	}
	if best < 0 {
		return 0, 0
	}
	return -best, position
}

func wildcard(label string, predicted, actual *string) Item {
	it := Item{Category: CategoryWildcard, Label: label, Predicted: *predicted}
	if actual != nil {
		it.Actual = *actual
	}
	if actual != nil && *predicted != "" && *predicted == *actual {
		it.Points = WildcardPoints
	}
	return it
}

func winner(label, predicted, actual string, points int) Item {
	it := Item{Category: CategoryWinner, Label: label, Predicted: predicted, Actual: actual}
	if predicted != "" && predicted == actual {
		it.Points = points
	}
	return it
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
