package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/padraicbc/f1picks/models"
)

// AddUser inserts a user named username with an unusable password.
func AddUser(t testing.TB, db bun.IDB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "!",
		CreatedAt: time.Now().UTC(),
	}
	u.Normalize()
	_, err := db.NewInsert().Model(u).Exec(context.Background())
	require.NoError(t, err)
	return u
}

// AddRace inserts a race whose cutoff is a day away.
func AddRace(t testing.TB, db bun.IDB, name string, sprint bool) *models.Race {
	t.Helper()
	now := time.Now().UTC()
	r := &models.Race{
		Name:      name,
		StartsAt:  now.Add(72 * time.Hour),
		CutoffAt:  now.Add(24 * time.Hour),
		IsSprint:  sprint,
		CreatedAt: now,
	}
	_, err := db.NewInsert().Model(r).Exec(context.Background())
	require.NoError(t, err)
	return r
}

// ResultDrivers is the driver grid used by SampleResult.
func ResultDrivers() models.DriverGrid {
	return models.DriverGrid{
		P1: "verstappen", P2: "norris", P3: "leclerc",
		P10: "albon", P11: "gasly", P19: "sargeant", P20: "zhou",
	}
}

// ResultConstructors is the constructor grid used by SampleResult.
func ResultConstructors() models.ConstructorGrid {
	return models.ConstructorGrid{
		P1: "red_bull", P2: "mclaren", P5: "aston_martin", P6: "alpine", P10: "sauber",
	}
}

// SampleResult is a complete non-sprint result.
func SampleResult(raceID int64) *models.RaceResult {
	return &models.RaceResult{
		RaceID:       raceID,
		Drivers:      ResultDrivers(),
		Constructors: ResultConstructors(),
		BiggestLoser: "perez",
	}
}

// SamplePrediction matches SampleResult in every slot and the biggest loser,
// which scores 29 on a non-sprint race.
func SamplePrediction(userID, raceID int64) *models.Prediction {
	return &models.Prediction{
		UserID:       userID,
		RaceID:       raceID,
		Drivers:      ResultDrivers(),
		Constructors: ResultConstructors(),
		BiggestLoser: "perez",
	}
}

// AddPrediction inserts p as is, bypassing the store's checks.
func AddPrediction(t testing.TB, db bun.IDB, p *models.Prediction) *models.Prediction {
	t.Helper()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := db.NewInsert().Model(p).Exec(context.Background())
	require.NoError(t, err)
	return p
}
