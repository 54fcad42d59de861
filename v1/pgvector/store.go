package pgvector

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/lib/pq"
	"gorm.io/gorm/clause"
)

// maxBindParameters is the PostgreSQL limit of parameters per statement.
const maxBindParameters = 65535

// maxBatchRows caps the rows of one INSERT.
const maxBatchRows = 1000

// tableBackend implements vectordb.Backend over a table per collection.
type tableBackend struct {
	client *Postgres
	schema *vectordb.Schema

	keyColumn string

	// dataSelect and fullSelect are the select lists without and with vectors.
	dataSelect string
	fullSelect string

	// updateColumns are assigned on key conflict.
	updateColumns []string
}

func newTableBackend(client *Postgres, schema *vectordb.Schema) *tableBackend {
	b := &tableBackend{client: client, schema: schema, keyColumn: schema.Key.FieldName()}

	cols := []string{pq.QuoteIdentifier(b.keyColumn)}
	for _, p := range schema.Data {
		cols = append(cols, pq.QuoteIdentifier(p.FieldName()))
		b.updateColumns = append(b.updateColumns, p.FieldName())
	}
	b.dataSelect = strings.Join(cols, ", ")

	for _, p := range schema.Vectors {
		q := pq.QuoteIdentifier(p.FieldName())
		cols = append(cols, q+"::text AS "+q)
		b.updateColumns = append(b.updateColumns, p.FieldName())
	}
	b.fullSelect = strings.Join(cols, ", ")
	return b
}

func (b *tableBackend) Name() string { return BackendName }

// selectQuery returns the lookup of one row by key.
func (b *tableBackend) selectQuery(table string, includeVectors bool) string {
	cols := b.dataSelect
	if includeVectors {
		cols = b.fullSelect
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1", cols, pq.QuoteIdentifier(table), pq.QuoteIdentifier(b.keyColumn))
}

func (b *tableBackend) deleteQuery(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s IN ?", pq.QuoteIdentifier(table), pq.QuoteIdentifier(b.keyColumn))
}

// batchSize keeps one INSERT under the bind parameter limit.
func (b *tableBackend) batchSize() int {
	perRow := 1 + len(b.updateColumns)
	return min(maxBatchRows, maxBindParameters/perRow)
}

func (b *tableBackend) Get(ctx context.Context, collection, key string, includeVectors bool) (Row, bool, error) {
	var rows []map[string]any
	err := b.client.DB().WithContext(ctx).Raw(b.selectQuery(collection, includeVectors), key).Scan(&rows).Error
	if IsUndefinedTableError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, vectordb.NewBackendOperationError(BackendName, "select_row", collection, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return Row(rows[0]), true, nil
}

// Upsert inserts rows and overwrites every column of existing keys, in
// batches inside one transaction.
func (b *tableBackend) Upsert(ctx context.Context, collection string, rows []Row) error {
	values := make([]map[string]any, len(rows))
	for i, r := range rows {
		values[i] = r
	}

	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: b.keyColumn}}}
	if len(b.updateColumns) == 0 {
		onConflict.DoNothing = true
	} else {
		onConflict.DoUpdates = clause.AssignmentColumns(b.updateColumns)
	}

	err := b.client.DB().WithContext(ctx).
		Table(collection).
		Clauses(onConflict).
		CreateInBatches(values, b.batchSize()).Error
	return vectordb.NewBackendOperationError(BackendName, "upsert_rows", collection, err)
}

func (b *tableBackend) Delete(ctx context.Context, collection string, keys []string) error {
	err := b.client.DB().WithContext(ctx).Exec(b.deleteQuery(collection), keys).Error
	return vectordb.NewBackendOperationError(BackendName, "delete_rows", collection, err)
}

// StoreOptions configures NewStore.
type StoreOptions struct {
	// Schema is the explicit schema; it takes precedence over RecordType.
	Schema *vectordb.Schema

	// RecordType is a struct type with `vectordb` tags, used when Schema is nil.
	RecordType reflect.Type

	// Mapping selects the default RowMapper or a custom mapper. A custom
	// mapper must write the same columns for every row.
	Mapping vectordb.Mapping[string, Row]

	// StoreOptions are passed to vectordb.NewRecordStore.
	StoreOptions []vectordb.StoreOption
}

// NewStore builds a record store over client. The schema is discovered and
// validated here, so an unsupported schema fails before any query is sent.
//
// Example:
//
//	store, err := pgvector.NewStore(pg, pgvector.StoreOptions{
//	    RecordType: reflect.TypeFor[Hotel](),
//	})
//	key, err := store.Upsert(ctx, record, vectordb.WithCollection("hotels"))
func NewStore(client *Postgres, opts StoreOptions) (*vectordb.RecordStore[string, Row], error) {
	if client == nil {
		return nil, vectordb.NewArgumentError("client", "must not be nil")
	}
	schema, err := vectordb.Discover(opts.Schema, opts.RecordType, DiscoveryOptions())
	if err != nil {
		return nil, err
	}
	mapper, err := opts.Mapping.Resolve(NewRowMapper(schema))
	if err != nil {
		return nil, err
	}
	cfg := client.Config()
	return vectordb.NewRecordStore[string, Row](newTableBackend(client, schema), schema, mapper, cfg.StoreConfig(), opts.StoreOptions...)
}
