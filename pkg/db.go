package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repos react to.
const (
	PgUniqueViolation = "23505"
	PgCheckViolation  = "23514"
)

// PgErrorCode returns the SQLSTATE of a wrapped *pgconn.PgError, or "" when err is not one.
func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsUniqueViolationError(err error) bool {
	return PgErrorCode(err) == PgUniqueViolation
}

func IsCheckViolationError(err error) bool {
	return PgErrorCode(err) == PgCheckViolation
}
