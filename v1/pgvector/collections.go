package pgvector

import (
	"context"
	"fmt"
	"iter"
	"log"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// listPageSize is the number of table names fetched per page.
const listPageSize = 100

const listTablesQuery = `SELECT table_name FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' AND table_name > ?
ORDER BY table_name LIMIT ?`

// CollectionManager creates, inspects and drops tables from a vendor-neutral
// schema. A collection is a table in the current schema.
type CollectionManager struct {
	client *Postgres
}

var _ vectordb.CollectionManager = (*CollectionManager)(nil)

// NewCollectionManager returns a manager over client.
func NewCollectionManager(client *Postgres) *CollectionManager {
	return &CollectionManager{client: client}
}

// CreateCollection validates and translates schema, then creates the table
// and its indexes in one transaction. Creating an existing table fails.
func (m *CollectionManager) CreateCollection(ctx context.Context, name string, schema *vectordb.Schema) error {
	if schema == nil {
		return vectordb.NewArgumentError("schema", "must not be nil")
	}
	validated, err := vectordb.Discover(schema, nil, DiscoveryOptions())
	if err != nil {
		return err
	}
	table, err := BuildTable(name, validated)
	if err != nil {
		return err
	}

	if err := m.client.EnsureExtension(ctx); err != nil {
		return vectordb.NewBackendOperationError(BackendName, "create_extension", name, err)
	}

	log.Printf("[PgVector] Creating table '%s' (%d columns, %d indexes)", name, len(table.Columns), len(table.Indexes))
	err = m.client.Transaction(ctx, func(tx *gorm.DB) error {
		for _, stmt := range table.Statements() {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return vectordb.NewBackendOperationError(BackendName, "create_table", name, err)
	}
	return nil
}

func (m *CollectionManager) CollectionExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := m.client.DB().WithContext(ctx).
		Raw("SELECT to_regclass(?) IS NOT NULL", pq.QuoteIdentifier(name)).
		Scan(&exists).Error
	if err != nil {
		return false, vectordb.NewBackendOperationError(BackendName, "lookup_table", name, err)
	}
	return exists, nil
}

// DeleteCollection drops the table with all its rows. Deleting a missing
// table is a no-op.
func (m *CollectionManager) DeleteCollection(ctx context.Context, name string) error {
	err := m.client.DB().WithContext(ctx).Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", pq.QuoteIdentifier(name))).Error
	if err != nil {
		return vectordb.NewBackendOperationError(BackendName, "drop_table", name, err)
	}
	log.Printf("[PgVector] Dropped table '%s'", name)
	return nil
}

// ListCollections yields the tables of the current schema in name order,
// one page of listPageSize names per query. The page token is the last name
// seen.
func (m *CollectionManager) ListCollections(ctx context.Context) iter.Seq2[string, error] {
	return vectordb.Paginate(ctx, BackendName, func(ctx context.Context, after string) ([]string, string, error) {
		var names []string
		err := m.client.DB().WithContext(ctx).Raw(listTablesQuery, after, listPageSize).Scan(&names).Error
		if err != nil {
			return nil, "", vectordb.NewBackendOperationError(BackendName, "list_tables", "", err)
		}
		var next string
		if len(names) == listPageSize {
			next = names[len(names)-1]
		}
		return names, next, nil
	})
}
