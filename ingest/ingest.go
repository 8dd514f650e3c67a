// Package ingest scores every prediction for a race once its result is
// stored and keeps user running totals in step with prediction points.
package ingest

import (
	"context"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/f1picks/apperr"
	"github.com/padraicbc/f1picks/logger"
	"github.com/padraicbc/f1picks/metrics"
	"github.com/padraicbc/f1picks/models"
	"github.com/padraicbc/f1picks/scoring"
	"github.com/padraicbc/f1picks/store"
)

// Config controls the optional absentee penalty. When enabled, users who
// registered before the cutoff but did not predict get the race's lowest
// score minus AbsenteeOffset.
type Config struct {
	AbsenteePenalty bool
	AbsenteeOffset  int
}

// Invalidator is notified after an ingestion changes standings.
type Invalidator interface {
	Invalidate()
}

type Service struct {
	store        store.Store
	cfg          Config
	log          *zap.Logger
	invalidators []Invalidator
	now          func() time.Time
}

func NewService(st store.Store, cfg Config, log *zap.Logger, inv ...Invalidator) *Service {
	return &Service{
		store:        st,
		cfg:          cfg,
		log:          log.Named("ingest"),
		invalidators: inv,
		now:          time.Now,
	}
}

// Scored is one prediction's outcome. Previous is the value the prediction
// held before this run.
type Scored struct {
	PredictionID int64 `json:"predictionID"`
	UserID       int64 `json:"userID"`
	Points       int   `json:"points"`
	Previous     int   `json:"previous"`
}

type Skipped struct {
	PredictionID int64  `json:"predictionID"`
	UserID       int64  `json:"userID"`
	Reason       string `json:"reason"`
}

type Penalty struct {
	UserID int64 `json:"userID"`
	Points int   `json:"points"`
}

type Report struct {
	RaceID    int64     `json:"raceID"`
	Scored    []Scored  `json:"scored"`
	Skipped   []Skipped `json:"skipped,omitempty"`
	Penalties []Penalty `json:"penalties,omitempty"`
	// Removed lists users whose earlier absentee penalty was withdrawn.
	Removed []int64 `json:"removed,omitempty"`
}

// Ingest scores all predictions for raceID against its stored result. It is
// safe to run repeatedly: totals move by the difference between the new and
// the previously stored points, so an unchanged result changes nothing.
func (s *Service) Ingest(ctx context.Context, raceID int64) (*Report, error) {
	return s.run(ctx, raceID, func(ctx context.Context, tx store.Store) (*Report, error) {
		return s.ingest(ctx, tx, raceID)
	})
}

// RecordResult stores res (replacing the existing result when replace is set)
// and ingests it in the same transaction.
func (s *Service) RecordResult(ctx context.Context, res *models.RaceResult, replace bool) (*Report, error) {
	return s.run(ctx, res.RaceID, func(ctx context.Context, tx store.Store) (*Report, error) {
		// Take the race lock before touching the result row.
		if _, err := tx.LockRace(ctx, res.RaceID); err != nil {
			return nil, err
		}
		save := tx.SaveResult
		if replace {
			save = tx.ReplaceResult
		}
		if err := save(ctx, res); err != nil {
			return nil, err
		}
		return s.ingest(ctx, tx, res.RaceID)
	})
}

func (s *Service) run(ctx context.Context, raceID int64, fn func(ctx context.Context, tx store.Store) (*Report, error)) (*Report, error) {
	start := s.now()
	log := s.log.With(logger.Race(raceID))

	var rep *Report
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		var err error
		rep, err = fn(ctx, tx)
		return err
	})
	elapsed := s.now().Sub(start)
	metrics.IngestDuration.Observe(elapsed.Seconds())

	if err != nil {
		if apperr.Is(err, apperr.KindPrecondition) {
			metrics.IngestionsTotal.WithLabelValues(metrics.OutcomePrecondition).Inc()
			log.Warn("ingestion refused", zap.Error(err))
		} else {
			metrics.IngestionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			log.Error("ingestion failed", zap.Error(err))
		}
		return nil, err
	}

	metrics.IngestionsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.PredictionsScored.Add(float64(len(rep.Scored)))
	for _, sc := range rep.Scored {
		metrics.PredictionPoints.Observe(float64(sc.Points))
	}
	for _, inv := range s.invalidators {
		inv.Invalidate()
	}

	log.Info("race ingested",
		zap.Int("scored", len(rep.Scored)),
		zap.Int("skipped", len(rep.Skipped)),
		zap.Int("penalties", len(rep.Penalties)),
		zap.Int("penalties_removed", len(rep.Removed)),
		zap.Duration("elapsed", elapsed),
	)
	return rep, nil
}

func (s *Service) ingest(ctx context.Context, tx store.Store, raceID int64) (*Report, error) {
	const op = "ingest"

	race, err := tx.LockRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	result, err := tx.GetResult(ctx, raceID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apperr.New(apperr.KindPrecondition, op,
			"race %d (%s) has no result yet; enter the official result before ingesting", race.ID, race.Name)
	}

	preds, err := tx.ListPredictions(ctx, raceID)
	if err != nil {
		return nil, err
	}

	rep := &Report{RaceID: raceID, Scored: make([]Scored, 0, len(preds))}
	for i := range preds {
		p := &preds[i]
		log := s.log.With(logger.Race(raceID), logger.Prediction(p.ID), logger.User(p.UserID))

		points, err := scoring.Points(race, p, result)
		if err != nil {
			log.Warn("prediction not scored", zap.Error(err))
			rep.Skipped = append(rep.Skipped, Skipped{PredictionID: p.ID, UserID: p.UserID, Reason: err.Error()})
			continue
		}

		if delta := points - p.Points; delta != 0 {
			if err := tx.UpdateUserTotal(ctx, p.UserID, delta); err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					log.Warn("prediction owner missing", zap.Error(err))
					rep.Skipped = append(rep.Skipped, Skipped{PredictionID: p.ID, UserID: p.UserID, Reason: err.Error()})
					continue
				}
				return nil, err
			}
		}
		if err := tx.WritePredictionPoints(ctx, p.ID, points); err != nil {
			return nil, err
		}

		log.Debug("prediction scored", zap.Int("points", points), zap.Int("previous", p.Points))
		rep.Scored = append(rep.Scored, Scored{PredictionID: p.ID, UserID: p.UserID, Points: points, Previous: p.Points})
	}

	if err := s.reconcilePenalties(ctx, tx, race, preds, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// reconcilePenalties makes the race's absentee penalties match the current
// policy and scores. Penalties that no longer apply are deleted and their
// points taken back off the user's total.
func (s *Service) reconcilePenalties(ctx context.Context, tx store.Store, race *models.Race, preds []models.Prediction, rep *Report) error {
	existing, err := tx.ListPenalties(ctx, race.ID)
	if err != nil {
		return err
	}

	want, err := s.absentees(ctx, tx, race, preds, rep.Scored)
	if err != nil {
		return err
	}

	for _, old := range existing {
		if _, keep := want[old.UserID]; keep {
			continue
		}
		if err := tx.DeletePenalty(ctx, old.ID); err != nil {
			return err
		}
		if err := tx.UpdateUserTotal(ctx, old.UserID, -old.Points); err != nil {
			return err
		}
		rep.Removed = append(rep.Removed, old.UserID)
	}

	had := make(map[int64]int, len(existing))
	for _, old := range existing {
		had[old.UserID] = old.Points
	}
	for _, userID := range slices.Sorted(maps.Keys(want)) {
		points := want[userID]
		prev, ok := had[userID]
		if !ok || prev != points {
			if err := tx.UpsertPenalty(ctx, &models.AbsenteePenalty{UserID: userID, RaceID: race.ID, Points: points}); err != nil {
				return err
			}
		}
		if delta := points - prev; delta != 0 {
			if err := tx.UpdateUserTotal(ctx, userID, delta); err != nil {
				return err
			}
		}
		rep.Penalties = append(rep.Penalties, Penalty{UserID: userID, Points: points})
	}
	return nil
}

// absentees returns the penalty owed by each user without a prediction, or
// nothing when the policy is off or nobody was scored.
func (s *Service) absentees(ctx context.Context, tx store.Store, race *models.Race, preds []models.Prediction, scored []Scored) (map[int64]int, error) {
	want := map[int64]int{}
	if !s.cfg.AbsenteePenalty || len(scored) == 0 {
		return want, nil
	}

	lowest := scored[0].Points
	for _, sc := range scored[1:] {
		lowest = min(lowest, sc.Points)
	}
	penalty := lowest - s.cfg.AbsenteeOffset

	predicted := make(map[int64]bool, len(preds))
	for _, p := range preds {
		predicted[p.UserID] = true
	}

	users, err := tx.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if predicted[u.ID] || !u.CreatedAt.Before(race.CutoffAt) {
			continue
		}
		want[u.ID] = penalty
	}
	return want, nil
}
