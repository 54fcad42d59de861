package qdrant

import (
	"context"
	"iter"
	"log"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
)

// CollectionManager creates, inspects and drops Qdrant collections from a
// vendor-neutral schema.
type CollectionManager struct {
	api          API
	namedVectors bool
}

var _ vectordb.CollectionManager = (*CollectionManager)(nil)

// NewCollectionManager returns a manager using client's API and vector mode.
func NewCollectionManager(client *QdrantClient) *CollectionManager {
	return &CollectionManager{api: client.API(), namedVectors: client.Config().NamedVectors}
}

// ──────────────────────────────────────────────────────────────
// CreateCollection
// ──────────────────────────────────────────────────────────────

// CreateCollection validates and translates schema, creates the collection
// and then one payload index per filterable data property. Translation happens
// before any request, so an unsupported schema never leaves a half-created
// collection behind. Creating an existing collection fails.
func (m *CollectionManager) CreateCollection(ctx context.Context, name string, schema *vectordb.Schema) error {
	if schema == nil {
		return vectordb.NewArgumentError("schema", "must not be nil")
	}
	validated, err := vectordb.Discover(schema, nil, DiscoveryOptions(m.namedVectors))
	if err != nil {
		return err
	}

	req, err := BuildCreateCollection(name, validated, m.namedVectors)
	if err != nil {
		return err
	}
	indexes, err := BuildPayloadIndexes(name, validated)
	if err != nil {
		return err
	}

	log.Printf("[Qdrant] Creating collection '%s' (%d vectors, %d payload indexes)", name, len(validated.Vectors), len(indexes))
	if err := m.api.CreateCollection(ctx, req); err != nil {
		return vectordb.NewBackendOperationError(BackendName, "create_collection", name, err)
	}

	for _, idx := range indexes {
		if _, err := m.api.CreateFieldIndex(ctx, idx); err != nil {
			return vectordb.NewBackendOperationError(BackendName, "create_field_index", name, err)
		}
	}

	log.Printf("[Qdrant] Created collection '%s' successfully", name)
	return nil
}

func (m *CollectionManager) CollectionExists(ctx context.Context, name string) (bool, error) {
	ok, err := m.api.CollectionExists(ctx, name)
	if err != nil {
		return false, vectordb.NewBackendOperationError(BackendName, "collection_exists", name, err)
	}
	return ok, nil
}

func (m *CollectionManager) DeleteCollection(ctx context.Context, name string) error {
	if err := m.api.DeleteCollection(ctx, name); err != nil {
		return vectordb.NewBackendOperationError(BackendName, "delete_collection", name, err)
	}
	log.Printf("[Qdrant] Deleted collection '%s'", name)
	return nil
}

// ListCollections yields collection names. Qdrant returns all names in one
// response, so the sequence is a single page.
func (m *CollectionManager) ListCollections(ctx context.Context) iter.Seq2[string, error] {
	return vectordb.Paginate(ctx, BackendName, func(ctx context.Context, _ string) ([]string, string, error) {
		names, err := m.api.ListCollections(ctx)
		if err != nil {
			return nil, "", vectordb.NewBackendOperationError(BackendName, "list_collections", "", err)
		}
		return names, "", nil
	})
}
