package apperrors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	pgFKViolation     = "23503"
)

// IsUniqueViolation reports whether err came from a unique index on either
// supported backend.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsCheckViolation reports whether err came from a CHECK constraint.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCheckViolation
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// IsForeignKeyViolation reports whether err came from a foreign key, e.g. a
// tag deleted while a recipe referencing it was being written.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgFKViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// FromDB maps storage errors onto the taxonomy. conflictMsg is used for unique
// violations; resource and id describe what a missing record means.
func FromDB(err error, resource string, id any, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(resource, id)
	case IsUniqueViolation(err):
		return Conflict(conflictMsg)
	case IsCheckViolation(err):
		return Invalid("value violates a data constraint")
	case IsForeignKeyViolation(err):
		return Invalid("a referenced record does not exist")
	}
	return err
}
