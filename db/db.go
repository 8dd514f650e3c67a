package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/padraicbc/f1picks/config"
	"github.com/padraicbc/f1picks/models"
)

// Setup opens a database connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	db, err := Open(cfg.DBDriver, cfg.DSN(), cfg.Debug)
	if err != nil {
		log.Fatal("failed to open database:", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// Open returns a bun.DB for driver without pinging it.
func Open(driver, dsn string, debug bool) (*bun.DB, error) {
	var db *bun.DB
	switch driver {
	case config.DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case config.DriverMySQL:
		sqldb, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(sqldb, mysqldialect.New())
	case config.DriverSQLite:
		sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer. The one connection is kept for the
		// life of the pool so the pragma below stays in force.
		sqldb.SetMaxOpenConns(1)
		sqldb.SetConnMaxLifetime(0)
		sqldb.SetConnMaxIdleTime(0)
		if _, err := sqldb.ExecContext(context.Background(), "PRAGMA foreign_keys = ON"); err != nil {
			_ = sqldb.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

// CreateTables creates all tables in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Race)(nil),
		(*models.Prediction)(nil),
		(*models.RaceResult)(nil),
		(*models.AbsenteePenalty)(nil),
	}

	for _, model := range tables {
		q := db.NewCreateTable().Model(model).IfNotExists()
		switch model.(type) {
		case *models.Prediction, *models.AbsenteePenalty:
			q = q.ForeignKey("(user_id) REFERENCES users (id) ON DELETE CASCADE").
				ForeignKey("(race_id) REFERENCES races (id) ON DELETE CASCADE")
		case *models.RaceResult:
			q = q.ForeignKey("(race_id) REFERENCES races (id) ON DELETE CASCADE")
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		model  interface{}
		name   string
		column string
	}{
		{(*models.Prediction)(nil), "predictions_race_idx", "race_id"},
		{(*models.AbsenteePenalty)(nil), "absentee_penalties_race_idx", "race_id"},
	}
	for _, ix := range indexes {
		if _, err := db.NewCreateIndex().Model(ix.model).Index(ix.name).Column(ix.column).IfNotExists().Exec(ctx); err != nil {
			log.Printf("index %s: %v", ix.name, err)
		}
	}

	return nil
}
