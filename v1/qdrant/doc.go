// Package qdrant implements the vectordb record store and collection manager
// on top of the official Qdrant Go client.
//
// The package owns three concerns:
//
//   - QdrantClient wraps the gRPC connection, performs a health check on
//     construction and closes the connection on shutdown.
//   - CollectionManager translates a vectordb.Schema into a CreateCollection
//     request plus one payload index per filterable property.
//   - NewStore builds a vectordb.RecordStore whose records are Qdrant points,
//     converted by PointMapper.
//
// # Keys
//
// Qdrant point ids are unsigned 64-bit integers or UUIDs. NewStore is generic
// over both and rejects a schema whose key type does not match:
//
//	store, err := qdrant.NewStore[uuid.UUID](client, qdrant.StoreOptions[uuid.UUID]{
//	    RecordType: reflect.TypeFor[Document](),
//	})
//
// # Vectors
//
// By default a collection holds a single unnamed vector and a schema may
// declare at most one vector property. Config.NamedVectors stores every vector
// property under its field name instead, which allows several per record.
// Only HNSW indexes exist in Qdrant; IndexFlat and the squared euclidean
// distance are rejected with vectordb.ErrUnsupportedConfiguration.
//
// # Payload
//
// Data properties become payload fields. Time values are stored as RFC 3339
// strings and UUIDs in canonical form, which is what the datetime and uuid
// payload indexes parse. Payload integers are signed 64-bit, so a uint64 data
// value above math.MaxInt64 fails with vectordb.ErrMapping.
//
// # Basic Usage
//
//	client, err := qdrant.NewQdrantClient(qdrant.QdrantParams{
//	    Config: qdrant.FromEndpoint("localhost").WithDefaultCollection("documents"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	schema, _ := vectordb.NewSchemaBuilder().
//	    Key("id", vectordb.TypeUint64).
//	    Data("title", vectordb.TypeString, vectordb.Filterable()).
//	    Vector("embedding", 4).
//	    Build()
//
//	if err := qdrant.NewCollectionManager(client).CreateCollection(ctx, "documents", schema); err != nil {
//	    log.Fatal(err)
//	}
//
//	store, err := qdrant.NewStore[uint64](client, qdrant.StoreOptions[uint64]{Schema: schema})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_, err = store.Upsert(ctx, vectordb.Record[uint64]{
//	    Key:     1,
//	    Data:    map[string]any{"title": "hello"},
//	    Vectors: map[string][]float32{"embedding": {0.1, 0.2, 0.3, 0.4}},
//	})
//
// # Fx Integration
//
//	app := fx.New(
//	    fx.Provide(func() *qdrant.Config { return qdrant.DefaultConfig() }),
//	    qdrant.FXModule,
//	)
//
// The module provides *QdrantClient, *CollectionManager and a
// vectordb.CollectionManager named "qdrant", and closes the client on stop.
//
// # Testing
//
// API is the subset of the official client this package calls. MockAPI is its
// gomock implementation; wrap it with NewQdrantClientWithAPI to test without a
// server. Integration tests run against a container and need the integration
// build tag.
package qdrant
