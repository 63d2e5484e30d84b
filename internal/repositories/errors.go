package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// DuplicateError reports a unique constraint collision on Field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

const pgUniqueViolation = "23505"

// uniqueViolationField inspects a driver error and returns the column whose
// unique index was violated. Postgres is matched on the index name only, since
// its Detail echoes the submitted value. sqlite reports
// "UNIQUE constraint failed: <table>.<column>".
func uniqueViolationField(err error, columns ...string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return matchColumn(pgErr.ConstraintName, columns), true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique && sqliteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
			return "", false
		}
		return matchColumn(sqliteErr.Error(), columns), true
	}

	return "", false
}

func matchColumn(msg string, columns []string) string {
	for _, c := range columns {
		if strings.Contains(msg, "."+c) || strings.Contains(msg, "_"+c) || strings.Contains(msg, "("+c+")") {
			return c
		}
	}
	return "unknown"
}
