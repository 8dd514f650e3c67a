package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/f1picks/apperr"
)

func strptr(s string) *string { return &s }

func validPrediction() *Prediction {
	return &Prediction{
		UserID: 1,
		RaceID: 1,
		Drivers: DriverGrid{
			P1: "verstappen", P2: "norris", P3: "leclerc",
			P10: "albon", P11: "gasly", P19: "sargeant", P20: "zhou",
		},
		Constructors: ConstructorGrid{
			P1: "red_bull", P2: "mclaren", P5: "aston_martin", P6: "alpine", P10: "sauber",
		},
		BiggestLoser: "perez",
	}
}

func TestGridSlots(t *testing.T) {
	p := validPrediction()

	slots := p.Drivers.Slots()
	require.Len(t, slots, len(DriverPositions))
	for i, s := range slots {
		assert.Equal(t, DriverPositions[i], s.Position)
	}
	assert.Equal(t, Slot{Position: 19, Identity: "sargeant"}, slots[5])

	cslots := p.Constructors.Slots()
	require.Len(t, cslots, len(ConstructorPositions))
	for i, s := range cslots {
		assert.Equal(t, ConstructorPositions[i], s.Position)
	}
	assert.Equal(t, Slot{Position: 6, Identity: "alpine"}, cslots[3])
}

func TestPredictionNormalize(t *testing.T) {
	p := validPrediction()
	p.Drivers.P1 = "  verstappen "
	p.BiggestLoser = " perez"
	p.SprintBiggestLoser = strptr("   ")
	p.RaceWinner = strptr(" verstappen ")

	p.Normalize()

	assert.Equal(t, "verstappen", p.Drivers.P1)
	assert.Equal(t, "perez", p.BiggestLoser)
	assert.Nil(t, p.SprintBiggestLoser)
	require.NotNil(t, p.RaceWinner)
	assert.Equal(t, "verstappen", *p.RaceWinner)
}

func TestPredictionValidate(t *testing.T) {
	t.Run("complete prediction", func(t *testing.T) {
		assert.NoError(t, validPrediction().Validate())
	})

	t.Run("missing driver slot", func(t *testing.T) {
		p := validPrediction()
		p.Drivers.P11 = ""
		err := p.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Contains(t, err.Error(), "P11")
	})

	t.Run("missing biggest loser", func(t *testing.T) {
		p := validPrediction()
		p.BiggestLoser = ""
		assert.ErrorIs(t, p.Validate(), apperr.ErrValidation)
	})

	t.Run("optional fields may be absent", func(t *testing.T) {
		p := validPrediction()
		p.SprintBiggestGainer = nil
		p.RaceWinner = nil
		assert.NoError(t, p.Validate())
	})
}

func TestRaceValidateAndCutoff(t *testing.T) {
	start := time.Date(2025, 3, 16, 4, 0, 0, 0, time.UTC)
	race := &Race{Name: "Australian Grand Prix", StartsAt: start, CutoffAt: start.Add(-48 * time.Hour)}
	require.NoError(t, race.Validate())

	assert.True(t, race.AcceptsPredictions(race.CutoffAt.Add(-time.Second)))
	assert.False(t, race.AcceptsPredictions(race.CutoffAt))
	assert.False(t, race.AcceptsPredictions(start))

	bad := &Race{Name: "Backwards", StartsAt: start, CutoffAt: start.Add(time.Hour)}
	assert.ErrorIs(t, bad.Validate(), apperr.ErrValidation)
}

func TestUserNormalize(t *testing.T) {
	u := &User{Username: " lando ", Email: " Lando@Example.COM "}
	u.Normalize()
	assert.Equal(t, "lando", u.Username)
	assert.Equal(t, "lando@example.com", u.Email)
	assert.Equal(t, "lando", u.DisplayName)
	assert.NoError(t, u.Validate())

	u.Email = "not-an-email"
	assert.ErrorIs(t, u.Validate(), apperr.ErrValidation)
}

func TestResultWinners(t *testing.T) {
	r := &RaceResult{
		Drivers:      validPrediction().Drivers,
		Constructors: validPrediction().Constructors,
		BiggestLoser: "perez",
	}
	assert.Equal(t, "verstappen", r.Winner())
	assert.Equal(t, "red_bull", r.ConstructorWinner())
	assert.NoError(t, r.Validate())
}
