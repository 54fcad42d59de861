package redis

import (
	"context"
	"iter"
	"log"
	"slices"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
)

// CollectionManager maps collections onto RediSearch indexes. A collection
// is an index named after it; with collection prefixes the index covers the
// keys "{name}:*".
type CollectionManager struct {
	cmds   Commands
	layout Layout
}

var _ vectordb.CollectionManager = (*CollectionManager)(nil)

// NewCollectionManager returns a manager using client's commands and layout.
func NewCollectionManager(client Client) *CollectionManager {
	return &CollectionManager{cmds: client, layout: client.Layout()}
}

// CreateCollection validates and translates schema, then creates the index.
// Translation happens before any command is sent.
func (m *CollectionManager) CreateCollection(ctx context.Context, name string, schema *vectordb.Schema) error {
	if schema == nil {
		return vectordb.NewArgumentError("schema", "must not be nil")
	}
	validated, err := vectordb.Discover(schema, nil, DiscoveryOptions())
	if err != nil {
		return err
	}

	def, err := BuildIndexSchema(name, validated, m.layout.storage(), m.layout.PrefixCollectionName)
	if err != nil {
		return err
	}

	log.Printf("[Redis] Creating index '%s' on %s (%d fields)", name, m.layout.storage(), len(def.Fields))
	if err := m.cmds.FTCreate(ctx, def.Name, def.Options, def.Fields...); err != nil {
		return vectordb.NewBackendOperationError(BackendName, "create_collection", name, err)
	}
	log.Printf("[Redis] Created index '%s' successfully", name)
	return nil
}

func (m *CollectionManager) CollectionExists(ctx context.Context, name string) (bool, error) {
	names, err := m.cmds.FTList(ctx)
	if err != nil {
		return false, vectordb.NewBackendOperationError(BackendName, "collection_exists", name, err)
	}
	return slices.Contains(names, name), nil
}

// DeleteCollection drops the index. With collection prefixes the records
// are deleted too; without them the index spans the whole keyspace, so the
// records are left in place. Deleting a missing collection is not an error.
func (m *CollectionManager) DeleteCollection(ctx context.Context, name string) error {
	err := m.cmds.FTDropIndex(ctx, name, m.layout.PrefixCollectionName)
	if isUnknownIndexError(err) {
		return nil
	}
	if err != nil {
		return vectordb.NewBackendOperationError(BackendName, "delete_collection", name, err)
	}
	log.Printf("[Redis] Deleted index '%s'", name)
	return nil
}

// ListCollections yields index names. FT._LIST returns every name in one
// reply, so the sequence is a single page.
func (m *CollectionManager) ListCollections(ctx context.Context) iter.Seq2[string, error] {
	return vectordb.Paginate(ctx, BackendName, func(ctx context.Context, _ string) ([]string, string, error) {
		names, err := m.cmds.FTList(ctx)
		if err != nil {
			return nil, "", vectordb.NewBackendOperationError(BackendName, "list_collections", "", err)
		}
		return names, "", nil
	})
}
