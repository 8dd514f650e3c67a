package leaderboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/padraicbc/f1picks/models"
	"github.com/padraicbc/f1picks/store"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) UserTotals(ctx context.Context) ([]store.UserTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.UserTotal), args.Error(1)
}

func total(id int64, name string, points, count int) store.UserTotal {
	return store.UserTotal{
		User:             models.User{ID: id, Username: name, DisplayName: name, TotalPoints: points},
		PredictionCount:  count,
		PredictionPoints: points,
	}
}

func TestRank(t *testing.T) {
	testCases := []struct {
		name      string
		totals    []store.UserTotal
		wantOrder []string
		wantRanks []int
	}{
		{
			name:      "empty",
			totals:    nil,
			wantOrder: []string{},
			wantRanks: []int{},
		},
		{
			name: "highest first",
			totals: []store.UserTotal{
				total(1, "alice", 10, 1),
				total(2, "bob", 40, 2),
				total(3, "carol", -5, 1),
			},
			wantOrder: []string{"bob", "alice", "carol"},
			wantRanks: []int{1, 2, 3},
		},
		{
			name: "ties share a rank in registration order",
			totals: []store.UserTotal{
				total(3, "carol", 20, 1),
				total(1, "alice", 20, 1),
				total(4, "dave", 5, 1),
				total(2, "bob", 30, 1),
			},
			wantOrder: []string{"bob", "alice", "carol", "dave"},
			wantRanks: []int{1, 2, 2, 4},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries := Rank(tc.totals)
			order := make([]string, len(entries))
			ranks := make([]int, len(entries))
			for i, e := range entries {
				order[i] = e.Username
				ranks[i] = e.Rank
			}
			assert.Equal(t, tc.wantOrder, order)
			assert.Equal(t, tc.wantRanks, ranks)
		})
	}
}

func TestStandingsCache(t *testing.T) {
	ctx := context.Background()
	src := &MockSource{}
	src.On("UserTotals", ctx).Return([]store.UserTotal{total(1, "alice", 10, 1)}, nil)

	agg := New(src, time.Minute, zap.NewNop())

	first, err := agg.Standings(ctx)
	require.NoError(t, err)
	first[0].TotalPoints = 999

	second, err := agg.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, second[0].TotalPoints)
	src.AssertNumberOfCalls(t, "UserTotals", 1)

	agg.Invalidate()
	_, err = agg.Standings(ctx)
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "UserTotals", 2)
}

// blockingSource hands out the current points, waiting on release when
// block is set so a caller can be held mid-read.
type blockingSource struct {
	mu      sync.Mutex
	points  int
	block   bool
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSource) UserTotals(ctx context.Context) ([]store.UserTotal, error) {
	s.mu.Lock()
	points, block := s.points, s.block
	s.block = false
	s.mu.Unlock()

	if block {
		close(s.entered)
		<-s.release
	}
	return []store.UserTotal{total(1, "alice", points, 1)}, nil
}

func (s *blockingSource) set(points int) {
	s.mu.Lock()
	s.points = points
	s.mu.Unlock()
}

func TestStandingsInvalidatedDuringRead(t *testing.T) {
	ctx := context.Background()
	src := &blockingSource{
		points:  10,
		block:   true,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	agg := New(src, time.Minute, zap.NewNop())

	done := make(chan []Entry)
	go func() {
		entries, err := agg.Standings(ctx)
		assert.NoError(t, err)
		done <- entries
	}()

	<-src.entered
	src.set(99)
	agg.Invalidate()
	close(src.release)

	stale := <-done
	require.Len(t, stale, 1)
	assert.Equal(t, 10, stale[0].TotalPoints)

	fresh, err := agg.Standings(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, 99, fresh[0].TotalPoints)
}

func TestStandingsWithoutCache(t *testing.T) {
	ctx := context.Background()
	src := &MockSource{}
	src.On("UserTotals", ctx).Return([]store.UserTotal{}, nil)

	agg := New(src, 0, zap.NewNop())
	for i := 0; i < 3; i++ {
		_, err := agg.Standings(ctx)
		require.NoError(t, err)
	}
	src.AssertNumberOfCalls(t, "UserTotals", 3)
}

func TestStandingsError(t *testing.T) {
	ctx := context.Background()
	src := &MockSource{}
	src.On("UserTotals", ctx).Return(nil, errors.New("db down"))

	agg := New(src, time.Minute, zap.NewNop())
	_, err := agg.Standings(ctx)
	assert.EqualError(t, err, "db down")
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	drifted := total(2, "bob", 30, 2)
	drifted.PredictionPoints = 25
	withPenalty := total(3, "carol", 16, 0)
	withPenalty.PredictionPoints = 0
	withPenalty.PenaltyPoints = 16

	src := &MockSource{}
	src.On("UserTotals", ctx).Return([]store.UserTotal{total(1, "alice", 10, 1), drifted, withPenalty}, nil)

	agg := New(src, time.Minute, zap.NewNop())
	got, err := agg.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Mismatch{{UserID: 2, Username: "bob", Maintained: 30, Recomputed: 25}}, got)
}
