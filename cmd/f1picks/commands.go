package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/padraicbc/f1picks/config"
	"github.com/padraicbc/f1picks/db"
	"github.com/padraicbc/f1picks/handlers"
	"github.com/padraicbc/f1picks/migrate"
	"github.com/padraicbc/f1picks/models"
)

func userCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}

	var username, email, displayName, password string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return errors.New("both --username and --password are required")
			}
			hash, err := handlers.HashPassword(password)
			if err != nil {
				return err
			}
			u := &models.User{Username: username, Email: email, DisplayName: displayName, Password: hash}
			if err := a.store.CreateUser(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %q saved with id %d\n", u.Username, u.ID)
			return nil
		},
	}
	add.Flags().StringVar(&username, "username", "", "username (required)")
	add.Flags().StringVar(&email, "email", "", "email address (required)")
	add.Flags().StringVar(&displayName, "display-name", "", "name shown on the leaderboard")
	add.Flags().StringVar(&password, "password", "", "plain-text password (required)")

	cmd.AddCommand(add)
	return cmd
}

func raceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "race", Short: "Manage the race calendar"}

	var name, starts, cutoff string
	var sprint bool
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a race",
		RunE: func(cmd *cobra.Command, args []string) error {
			startsAt, err := time.Parse(time.RFC3339, starts)
			if err != nil {
				return fmt.Errorf("--starts: %w", err)
			}
			cutoffAt, err := time.Parse(time.RFC3339, cutoff)
			if err != nil {
				return fmt.Errorf("--cutoff: %w", err)
			}
			r := &models.Race{Name: name, StartsAt: startsAt, CutoffAt: cutoffAt, IsSprint: sprint}
			if err := a.store.CreateRace(cmd.Context(), r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "race %q saved with id %d\n", r.Name, r.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "race name (required)")
	add.Flags().StringVar(&starts, "starts", "", "race start, RFC3339 (required)")
	add.Flags().StringVar(&cutoff, "cutoff", "", "prediction cutoff, RFC3339 (required)")
	add.Flags().BoolVar(&sprint, "sprint", false, "sprint weekend")

	list := &cobra.Command{
		Use:   "list",
		Short: "List races",
		RunE: func(cmd *cobra.Command, args []string) error {
			races, err := a.store.ListRaces(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tSTARTS\tCUTOFF\tSPRINT\tRESULT")
			for _, r := range races {
				res, err := a.store.GetResult(cmd.Context(), r.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%t\n", r.ID, r.Name,
					r.StartsAt.Format(time.RFC3339), r.CutoffAt.Format(time.RFC3339), r.IsSprint, res != nil)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func ingestCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <raceID>",
		Short: "Score every prediction for a race against its stored result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raceID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid race id %q", args[0])
			}
			rep, err := a.ingest.Ingest(cmd.Context(), raceID)
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "PREDICTION\tUSER\tPOINTS\tPREVIOUS")
			for _, s := range rep.Scored {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", s.PredictionID, s.UserID, s.Points, s.Previous)
			}
			for _, p := range rep.Penalties {
				fmt.Fprintf(tw, "-\t%d\t%d\tabsent\n", p.UserID, p.Points)
			}
			for _, s := range rep.Skipped {
				fmt.Fprintf(tw, "%d\t%d\t-\t%s\n", s.PredictionID, s.UserID, s.Reason)
			}
			return tw.Flush()
		},
	}
}

func standingsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Print the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.board.Standings(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "RANK\tPLAYER\tPOINTS\tPREDICTIONS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", e.Rank, e.DisplayName, e.TotalPoints, e.PredictionCount)
			}
			return tw.Flush()
		},
	}
}

func verifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check running totals against stored points",
		RunE: func(cmd *cobra.Command, args []string) error {
			mismatches, err := a.board.Verify(cmd.Context())
			if err != nil {
				return err
			}
			if len(mismatches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "all running totals match")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "USER\tMAINTAINED\tRECOMPUTED")
			for _, m := range mismatches {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", m.Username, m.Maintained, m.Recomputed)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return fmt.Errorf("%d running totals out of step", len(mismatches))
		},
	}
}

func migrateCommand(a *app) *cobra.Command {
	var fromDriver, fromDSN string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy all data from another database into the configured one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromDSN == "" {
				return errors.New("--from-dsn is required")
			}
			src, err := db.Open(fromDriver, fromDSN, a.cfg.Debug)
			if err != nil {
				return err
			}
			defer src.Close()
			if err := src.PingContext(cmd.Context()); err != nil {
				return fmt.Errorf("ping source: %w", err)
			}

			steps, err := migrate.Copy(cmd.Context(), src, a.db, a.log)
			if err != nil {
				return err
			}
			for _, s := range steps {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d rows migrated\n", s.Table, s.Rows)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fromDriver, "from-driver", config.DriverMySQL, "source driver: postgres, mysql or sqlite")
	cmd.Flags().StringVar(&fromDSN, "from-dsn", "", "source connection string (required)")
	return cmd
}
