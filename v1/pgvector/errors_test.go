package pgvector

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	undefined := &pgconn.PgError{Code: "42P01", Message: `relation "hotels" does not exist`}
	duplicate := &pgconn.PgError{Code: "42P07", Message: `relation "hotels" already exists`}
	noExtension := &pgconn.PgError{Code: "58P01", Message: `could not open extension control file`}

	assert.True(t, IsUndefinedTableError(undefined))
	assert.True(t, IsUndefinedTableError(fmt.Errorf("query: %w", undefined)))
	assert.False(t, IsUndefinedTableError(duplicate))
	assert.False(t, IsUndefinedTableError(errors.New("42P01")))

	assert.True(t, IsDuplicateTableError(duplicate))
	assert.True(t, IsExtensionMissingError(noExtension))

	wrapped := vectordb.NewBackendOperationError(BackendName, "create_table", "hotels", duplicate)
	assert.ErrorIs(t, wrapped, vectordb.ErrBackendOperation)
	assert.True(t, IsDuplicateTableError(wrapped), "the server error stays reachable through the wrapper")
}
