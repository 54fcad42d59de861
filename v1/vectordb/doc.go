// Package vectordb provides a vendor-neutral record model for vector databases.
//
// # Overview
//
// A [Schema] describes a record type once: one key property, any number of data
// properties and any number of vector properties. Each backend package
// (qdrant, redis, azuresearch) uses the schema to translate collection
// definitions into its native index configuration and to convert a [Record]
// to and from its native wire shape. Callers only ever see this package's
// types.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                    Application Layer                        │
//	│      (uses vectordb.Store / vectordb.CollectionManager)     │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           │
//	                           ▼
//	┌─────────────────────────────────────────────────────────────┐
//	│     KeyNormalizingStore (optional key/collection encoding)   │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           ▼
//	┌─────────────────────────────────────────────────────────────┐
//	│   RecordStore[K, N]: options, fan-out, spans, observer      │
//	│        RecordMapper[K, N] ⇄ Backend[K, N]                   │
//	└──────────────────────────┬──────────────────────────────────┘
//	        ┌──────────────────┼──────────────────┐
//	        ▼                  ▼                  ▼
//	┌───────────────┐  ┌───────────────┐  ┌────────────────┐
//	│    qdrant     │  │     redis     │  │  azuresearch   │
//	│ PointStruct   │  │ hash / JSON   │  │ JSON document  │
//	└───────────────┘  └───────────────┘  └────────────────┘
//
// # Defining a schema
//
// Either build one explicitly:
//
//	schema, err := vectordb.NewSchemaBuilder().
//	    Key("id", vectordb.TypeString).
//	    Data("title", vectordb.TypeString, vectordb.Filterable(), vectordb.FullTextSearchable()).
//	    Vector("embedding", 1536, vectordb.WithDistance(vectordb.DistanceCosine)).
//	    Build()
//
// or derive it from struct tags, once, at construction:
//
//	type Doc struct {
//	    ID        string    `vectordb:"key"`
//	    Title     string    `vectordb:"data,filterable,fulltext"`
//	    Embedding []float32 `vectordb:"vector,dims=1536,distance=cosine"`
//	}
//
//	schema, err := vectordb.SchemaFromStruct[Doc]()
//
// Backends run [Discover] with their own [DiscoveryOptions] so that
// unsupported key types or too many vectors fail before any network call.
//
// # Storing records
//
//	// the default collection comes from qdrant.Config.DefaultCollection
//	store, err := qdrant.NewStore[uint64](client, qdrant.StoreOptions[uint64]{
//	    Schema: schema,
//	})
//
//	keys, err := store.UpsertBatch(ctx, records)
//	rec, err := store.Get(ctx, 42, vectordb.WithVectors(true))
//	recs, err := store.GetBatch(ctx, []uint64{1, 2, 3}, vectordb.WithCollection("other"))
//
// GetBatch issues one native lookup per key, at most
// [StoreConfig.MaxParallelism] at a time (default 50), and returns records in
// key order. If any key is missing the call fails with a [NotFoundError] and
// returns nothing.
//
// # Errors
//
// Every error matches exactly one sentinel via errors.Is: [ErrSchema],
// [ErrUnsupportedConfiguration], [ErrUnsupportedType], [ErrMapping],
// [ErrNotFound], [ErrBackendOperation] or [ErrArgument]. No operation retries.
//
// # Thread Safety
//
// Schemas, translators and mappers are immutable after construction. Stores
// and decorators are safe for concurrent use.
package vectordb
