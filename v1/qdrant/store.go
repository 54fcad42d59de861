package qdrant

import (
	"context"
	"reflect"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// pointBackend implements vectordb.Backend over the points API.
type pointBackend[K Key] struct {
	api API
}

func (b *pointBackend[K]) Name() string { return BackendName }

func (b *pointBackend[K]) Get(ctx context.Context, collection string, key K, includeVectors bool) (*qdrant.PointStruct, bool, error) {
	points, err := b.api.Get(ctx, &qdrant.GetPoints{
		CollectionName: collection,
		Ids:            []*qdrant.PointId{pointID(key)},
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(includeVectors),
	})
	if err != nil {
		return nil, false, vectordb.NewBackendOperationError(BackendName, "get", collection, err)
	}
	if len(points) == 0 {
		return nil, false, nil
	}
	return pointFromRetrieved(points[0]), true, nil
}

func (b *pointBackend[K]) Upsert(ctx context.Context, collection string, points []*qdrant.PointStruct) error {
	wait := true
	_, err := b.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           &wait,
	})
	return vectordb.NewBackendOperationError(BackendName, "upsert", collection, err)
}

func (b *pointBackend[K]) Delete(ctx context.Context, collection string, keys []K) error {
	ids := make([]*qdrant.PointId, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, pointID(k))
	}

	wait := true
	_, err := b.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: ids},
			},
		},
		Wait: &wait,
	})
	return vectordb.NewBackendOperationError(BackendName, "delete", collection, err)
}

// StoreOptions configures NewStore.
type StoreOptions[K Key] struct {
	// Schema is the explicit schema; it takes precedence over RecordType.
	Schema *vectordb.Schema

	// RecordType is a struct type with `vectordb` tags, used when Schema is nil.
	RecordType reflect.Type

	// Mapping selects the default PointMapper or a custom mapper.
	Mapping vectordb.Mapping[K, *qdrant.PointStruct]

	// StoreOptions are passed to vectordb.NewRecordStore.
	StoreOptions []vectordb.StoreOption
}

// NewStore builds a record store over client. The schema is discovered and
// validated here, so an unsupported schema fails before any request is sent.
//
// Example:
//
//	store, err := qdrant.NewStore[uint64](client, qdrant.StoreOptions[uint64]{
//	    RecordType: reflect.TypeFor[Doc](),
//	})
//	keys, err := store.UpsertBatch(ctx, records)
func NewStore[K Key](client *QdrantClient, opts StoreOptions[K]) (*vectordb.RecordStore[K, *qdrant.PointStruct], error) {
	if client == nil || client.API() == nil {
		return nil, vectordb.NewArgumentError("client", "must not be nil")
	}
	cfg := client.Config()

	schema, err := vectordb.Discover(opts.Schema, opts.RecordType, DiscoveryOptions(cfg.NamedVectors))
	if err != nil {
		return nil, err
	}
	if want := keyType[K](); schema.Key.Type != want {
		return nil, vectordb.NewSchemaError(schema.Key.Name, "key type %s does not match store key type %s", schema.Key.Type, want)
	}

	mapper, err := opts.Mapping.Resolve(NewPointMapper[K](schema, cfg.NamedVectors))
	if err != nil {
		return nil, err
	}

	return vectordb.NewRecordStore[K, *qdrant.PointStruct](&pointBackend[K]{api: client.API()}, schema, mapper, cfg.StoreConfig(), opts.StoreOptions...)
}
