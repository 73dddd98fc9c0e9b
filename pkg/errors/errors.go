package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes this service translates.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeRaiseException      = "P0001"
)

var (
	// ErrReferenced a restricted row is still referenced by another row.
	ErrReferenced = errors.New("record is still referenced")
	// ErrDuplicate a unique constraint would be violated.
	ErrDuplicate = errors.New("record already exists")
	// ErrConstraint a check constraint rejected the row.
	ErrConstraint = errors.New("record violates a constraint")
	// ErrLegacyWrite a trigger rejected a write to a frozen legacy column.
	ErrLegacyWrite = errors.New("legacy column is read-only")
)

// TranslateDB maps a driver error to one of the sentinels above, keeping the
// original error in the chain. Unknown errors are returned unchanged.
func TranslateDB(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeForeignKeyViolation:
		return &dbError{sentinel: ErrReferenced, constraint: pgErr.ConstraintName, err: err}
	case codeUniqueViolation:
		return &dbError{sentinel: ErrDuplicate, constraint: pgErr.ConstraintName, err: err}
	case codeCheckViolation:
		return &dbError{sentinel: ErrConstraint, constraint: pgErr.ConstraintName, err: err}
	case codeRaiseException:
		return &dbError{sentinel: ErrLegacyWrite, err: err}
	}
	return err
}

// Constraint returns the violated constraint name, if err came from TranslateDB.
func Constraint(err error) string {
	var de *dbError
	if errors.As(err, &de) {
		return de.constraint
	}
	return ""
}

type dbError struct {
	sentinel   error
	constraint string
	err        error
}

func (e *dbError) Error() string {
	if e.constraint != "" {
		return e.sentinel.Error() + " (" + e.constraint + ")"
	}
	return e.sentinel.Error()
}

func (e *dbError) Is(target error) bool { return target == e.sentinel }

func (e *dbError) Unwrap() error { return e.err }
