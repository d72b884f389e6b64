// Package pgerr translates PostgreSQL error codes into the shared error
// taxonomy so services and handlers never inspect driver errors directly.
package pgerr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

// SQLSTATE classes we care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeUndefinedTable      = "42P01"
)

// Map converts a pgx error into a taxonomy error. Anything unrecognized is
// returned as-is.
func Map(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return &common.DuplicateError{Field: constraintField(pgErr), Value: constraintValue(pgErr)}
	case codeForeignKeyViolation:
		return common.ErrForeignKey
	case codeNotNullViolation:
		return common.ErrMissingField
	case codeCheckViolation:
		return common.ErrCheckViolation
	case codeUndefinedTable:
		return common.ErrUndefinedTable
	}
	return err
}

// constraintField extracts the offending column from the detail line
// "Key (email)=(a@b.c) already exists.", falling back to the column name.
func constraintField(pgErr *pgconn.PgError) string {
	if f, _ := parseDetail(pgErr.Detail); f != "" {
		return f
	}
	return pgErr.ColumnName
}

func constraintValue(pgErr *pgconn.PgError) string {
	_, v := parseDetail(pgErr.Detail)
	return v
}

func parseDetail(detail string) (field, value string) {
	if !strings.HasPrefix(detail, "Key (") {
		return "", ""
	}
	rest := detail[len("Key ("):]
	end := strings.Index(rest, ")=(")
	if end < 0 {
		return "", ""
	}
	field = rest[:end]
	rest = rest[end+len(")=("):]
	if end = strings.Index(rest, ")"); end < 0 {
		return field, ""
	}
	return field, rest[:end]
}
