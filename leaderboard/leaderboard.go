// Package leaderboard ranks users by their running totals.
//
// Ties share a rank (1, 1, 3) and are listed in registration order.
package leaderboard

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/padraicbc/f1picks/metrics"
	"github.com/padraicbc/f1picks/store"
)

const standingsKey = "standings"

type Entry struct {
	Rank            int    `json:"rank"`
	UserID          int64  `json:"userID"`
	Username        string `json:"username"`
	DisplayName     string `json:"displayName"`
	TotalPoints     int    `json:"totalPoints"`
	PredictionCount int    `json:"predictionCount"`
}

// Mismatch is a user whose maintained total differs from the sum of their
// stored prediction and penalty points.
type Mismatch struct {
	UserID     int64  `json:"userID"`
	Username   string `json:"username"`
	Maintained int    `json:"maintained"`
	Recomputed int    `json:"recomputed"`
}

// Source supplies per-user totals. *store.BunStore satisfies it.
type Source interface {
	UserTotals(ctx context.Context) ([]store.UserTotal, error)
}

// Aggregator serves standings, caching them for ttl. Ingestion calls
// Invalidate so a fresh result shows up immediately.
type Aggregator struct {
	src   Source
	ttl   time.Duration
	cache *cache.Cache
	log   *zap.Logger
	// gen counts invalidations. A computation started before an
	// invalidation must not be cached after it.
	mu  sync.Mutex
	gen uint64
}

// New returns an Aggregator. A ttl of zero or less disables caching.
func New(src Source, ttl time.Duration, log *zap.Logger) *Aggregator {
	return &Aggregator{
		src:   src,
		ttl:   ttl,
		cache: cache.New(ttl, 2*ttl),
		log:   log.Named("leaderboard"),
	}
}

// Standings returns every user ranked by total points.
func (a *Aggregator) Standings(ctx context.Context) ([]Entry, error) {
	if a.ttl > 0 {
		if v, ok := a.cache.Get(standingsKey); ok {
			metrics.LeaderboardCache.WithLabelValues("hit").Inc()
			return slices.Clone(v.([]Entry)), nil
		}
		metrics.LeaderboardCache.WithLabelValues("miss").Inc()
	}

	a.mu.Lock()
	gen := a.gen
	a.mu.Unlock()

	totals, err := a.src.UserTotals(ctx)
	if err != nil {
		return nil, err
	}
	entries := Rank(totals)

	if a.ttl > 0 {
		a.mu.Lock()
		if a.gen == gen {
			a.cache.Set(standingsKey, slices.Clone(entries), cache.DefaultExpiration)
		}
		a.mu.Unlock()
	}
	a.log.Debug("standings computed", zap.Int("users", len(entries)))
	return entries, nil
}

// Invalidate drops cached standings, including any still being computed.
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	a.gen++
	a.cache.Delete(standingsKey)
	a.mu.Unlock()
}

// Verify recomputes every user's total from stored points and reports the
// users whose running total disagrees. It never uses the cache.
func (a *Aggregator) Verify(ctx context.Context) ([]Mismatch, error) {
	totals, err := a.src.UserTotals(ctx)
	if err != nil {
		return nil, err
	}
	var out []Mismatch
	for _, t := range totals {
		if t.User.TotalPoints == t.Recomputed() {
			continue
		}
		out = append(out, Mismatch{
			UserID:     t.User.ID,
			Username:   t.User.Username,
			Maintained: t.User.TotalPoints,
			Recomputed: t.Recomputed(),
		})
	}
	if len(out) > 0 {
		a.log.Warn("running totals out of step", zap.Int("users", len(out)))
	}
	return out, nil
}

// Rank orders totals by points, highest first. Equal totals keep ascending
// user id order and share the rank of the first of them.
func Rank(totals []store.UserTotal) []Entry {
	sorted := slices.Clone(totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].User, sorted[j].User
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		return a.ID < b.ID
	})

	entries := make([]Entry, len(sorted))
	for i, t := range sorted {
		rank := i + 1
		if i > 0 && t.User.TotalPoints == sorted[i-1].User.TotalPoints {
			rank = entries[i-1].Rank
		}
		entries[i] = Entry{
			Rank:            rank,
			UserID:          t.User.ID,
			Username:        t.User.Username,
			DisplayName:     t.User.DisplayName,
			TotalPoints:     t.User.TotalPoints,
			PredictionCount: t.PredictionCount,
		}
	}
	return entries
}
