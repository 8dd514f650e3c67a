// Package migrate copies every table from one database into another, for
// example from a local SQLite file into PostgreSQL. Source and target may use
// any supported driver.
package migrate

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.uber.org/zap"

	"github.com/padraicbc/f1picks/db"
	"github.com/padraicbc/f1picks/models"
)

const batchSize = 500

// Step is the outcome of copying one table.
type Step struct {
	Table string
	Rows  int
}

// Copy creates the schema on dst and copies all rows from src in dependency
// order. Rows whose primary or unique keys already exist on dst are skipped,
// so re-runs are safe.
func Copy(ctx context.Context, src, dst *bun.DB, log *zap.Logger) ([]Step, error) {
	if err := db.CreateTables(ctx, dst); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	steps := []struct {
		table string
		fn    func() (int, error)
	}{
		{"users", func() (int, error) { return copyTable[models.User](ctx, src, dst) }},
		{"races", func() (int, error) { return copyTable[models.Race](ctx, src, dst) }},
		{"predictions", func() (int, error) { return copyTable[models.Prediction](ctx, src, dst) }},
		{"race_results", func() (int, error) { return copyTable[models.RaceResult](ctx, src, dst) }},
		{"absentee_penalties", func() (int, error) { return copyTable[models.AbsenteePenalty](ctx, src, dst) }},
	}

	out := make([]Step, 0, len(steps))
	for _, s := range steps {
		n, err := s.fn()
		if err != nil {
			return out, fmt.Errorf("migrate %s: %w", s.table, err)
		}
		log.Info("table migrated", zap.String("table", s.table), zap.Int("rows", n))
		out = append(out, Step{Table: s.table, Rows: n})
	}

	if dst.Dialect().Name() == dialect.PG {
		resetSequences(ctx, dst, log)
	}
	return out, nil
}

// copyTable pages through src by id and inserts each batch into dst,
// ignoring rows that already exist.
func copyTable[T any](ctx context.Context, src, dst bun.IDB) (int, error) {
	total := 0
	for offset := 0; ; offset += batchSize {
		var batch []T
		err := src.NewSelect().
			Model(&batch).
			OrderExpr("id ASC").
			Limit(batchSize).
			Offset(offset).
			Scan(ctx)
		if err != nil {
			return total, err
		}
		if len(batch) == 0 {
			return total, nil
		}
		if _, err := dst.NewInsert().Model(&batch).Ignore().Exec(ctx); err != nil {
			return total, err
		}
		total += len(batch)
		if len(batch) < batchSize {
			return total, nil
		}
	}
}

// resetSequences advances each PG sequence to MAX(id) so new inserts don't conflict.
func resetSequences(ctx context.Context, dst *bun.DB, log *zap.Logger) {
	for _, table := range []string{"users", "races", "predictions", "race_results", "absentee_penalties"} {
		q := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1))",
			table, table,
		)
		if _, err := dst.ExecContext(ctx, q); err != nil {
			log.Warn("reset sequence", zap.String("table", table), zap.Error(err))
		}
	}
}
