package azuresearch

import (
	"context"
	"iter"
	"log"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
)

// CollectionManager creates, inspects and drops search indexes from a
// vendor-neutral schema. A collection is an index.
type CollectionManager struct {
	client *SearchClient
}

var _ vectordb.CollectionManager = (*CollectionManager)(nil)

// NewCollectionManager returns a manager over client.
func NewCollectionManager(client *SearchClient) *CollectionManager {
	return &CollectionManager{client: client}
}

// CreateCollection validates and translates schema, then creates the index in
// one request. Creating an existing index fails.
func (m *CollectionManager) CreateCollection(ctx context.Context, name string, schema *vectordb.Schema) error {
	if schema == nil {
		return vectordb.NewArgumentError("schema", "must not be nil")
	}
	validated, err := vectordb.Discover(schema, nil, DiscoveryOptions())
	if err != nil {
		return err
	}
	idx, err := BuildIndex(name, validated)
	if err != nil {
		return err
	}

	log.Printf("[AzureSearch] Creating index '%s' (%d fields, %d vectors)", name, len(idx.Fields), len(validated.Vectors))
	if err := m.client.CreateIndex(ctx, idx); err != nil {
		return vectordb.NewBackendOperationError(BackendName, "create_index", name, err)
	}
	return nil
}

func (m *CollectionManager) CollectionExists(ctx context.Context, name string) (bool, error) {
	ok, err := m.client.IndexExists(ctx, name)
	if err != nil {
		return false, vectordb.NewBackendOperationError(BackendName, "get_index", name, err)
	}
	return ok, nil
}

// DeleteCollection drops the index with all its documents. Deleting a missing
// index is a no-op.
func (m *CollectionManager) DeleteCollection(ctx context.Context, name string) error {
	if err := m.client.DeleteIndex(ctx, name); err != nil {
		return vectordb.NewBackendOperationError(BackendName, "delete_index", name, err)
	}
	log.Printf("[AzureSearch] Deleted index '%s'", name)
	return nil
}

// ListCollections yields the index names. The service lists every index in
// one response, so the sequence has a single page.
func (m *CollectionManager) ListCollections(ctx context.Context) iter.Seq2[string, error] {
	return vectordb.Paginate(ctx, BackendName, func(ctx context.Context, _ string) ([]string, string, error) {
		names, err := m.client.ListIndexNames(ctx)
		if err != nil {
			return nil, "", vectordb.NewBackendOperationError(BackendName, "list_indexes", "", err)
		}
		return names, "", nil
	})
}
