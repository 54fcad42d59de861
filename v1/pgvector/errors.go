package pgvector

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the backend reacts to.
const (
	codeUndefinedTable = "42P01"
	codeDuplicateTable = "42P07"
	codeUndefinedFile  = "58P01"
)

// sqlState returns the SQLSTATE of a server error, or "" for other errors.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUndefinedTableError reports whether err says the table does not exist.
func IsUndefinedTableError(err error) bool {
	return sqlState(err) == codeUndefinedTable
}

// IsDuplicateTableError reports whether err says the table already exists.
func IsDuplicateTableError(err error) bool {
	return sqlState(err) == codeDuplicateTable
}

// IsExtensionMissingError reports whether err says the vector extension is
// not installed on the server.
func IsExtensionMissingError(err error) bool {
	return sqlState(err) == codeUndefinedFile
}
