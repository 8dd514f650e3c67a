package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/padraicbc/f1picks/apperr"
)

// translate maps driver errors onto apperr kinds. Anything unrecognised is
// wrapped with op and passed through.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperr.Wrap(apperr.KindNotFound, op, err)
	case isUniqueViolation(err):
		return apperr.Wrap(apperr.KindConflict, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// expectOne turns a zero rows-affected update into NotFound.
func expectOne(op string, res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, op, "%s %d not found", what, id)
	}
	return nil
}
