package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/f1picks/ingest"
	"github.com/padraicbc/f1picks/leaderboard"
	"github.com/padraicbc/f1picks/store"
)

// tokenTTL is how long a signin token stays valid.
const tokenTTL = 30 * 24 * time.Hour

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	store   store.Store
	ingest  *ingest.Service
	board   *leaderboard.Aggregator
	isAdmin func(username string) bool
	log     *zap.Logger
	now     func() time.Time
	JWTKey  []byte
}

// New creates a Handler. isAdmin decides who may use the admin routes.
func New(st store.Store, svc *ingest.Service, board *leaderboard.Aggregator, jwtKey []byte, isAdmin func(string) bool, log *zap.Logger) *Handler {
	return &Handler{
		store:   st,
		ingest:  svc,
		board:   board,
		isAdmin: isAdmin,
		log:     log.Named("http"),
		now:     time.Now,
		JWTKey:  jwtKey,
	}
}
