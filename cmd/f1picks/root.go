package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/f1picks/config"
	"github.com/padraicbc/f1picks/db"
	"github.com/padraicbc/f1picks/ingest"
	"github.com/padraicbc/f1picks/leaderboard"
	applog "github.com/padraicbc/f1picks/logger"
	"github.com/padraicbc/f1picks/store"
)

// app is everything a subcommand needs, built once in PersistentPreRunE.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *bun.DB
	store  *store.BunStore
	board  *leaderboard.Aggregator
	ingest *ingest.Service
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func rootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "f1picks",
		Short:         "Manage races, results and standings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(
		userCommand(a),
		raceCommand(a),
		ingestCommand(a),
		standingsCommand(a),
		verifyCommand(a),
		migrateCommand(a),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.cfg = config.Load()

	log, err := applog.New(a.cfg.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.log = log

	a.db = db.Setup(a.cfg)
	if err := db.CreateTables(ctx, a.db); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	a.store = store.New(a.db)
	// A one-shot command has nothing to cache.
	a.board = leaderboard.New(a.store, 0, log)
	a.ingest = ingest.NewService(a.store, ingest.Config{
		AbsenteePenalty: a.cfg.AbsenteePenalty,
		AbsenteeOffset:  a.cfg.AbsenteePenaltyOffset,
	}, log, a.board)
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
