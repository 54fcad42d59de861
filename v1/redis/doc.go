// Package redis provides the Redis Stack backend of the vector store.
//
// Records are stored as hashes or as RedisJSON documents; each collection is
// a RediSearch index over the records' keys. The package translates a
// vendor-neutral vectordb.Schema into an FT.CREATE definition and maps
// vectordb.Record values to and from the stored form.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Commands interface: the hash, JSON and search commands the store needs
//   - RedisClient struct: go-redis backed implementation of Commands
//   - Client interface: Commands plus the record Layout; stores and collection
//     managers accept it, so tests can run against an in-memory implementation
//   - BuildIndexSchema: pure schema translation, split from I/O
//   - HashMapper / JSONMapper: default record mappers per storage type
//   - FX module: provides *RedisClient, *CollectionManager and the manager as
//     a vectordb.CollectionManager named "redis"
//
// # Layout
//
// Layout controls how records end up in Redis:
//   - Storage: StorageHash (default) or StorageJSON
//   - PrefixCollectionName: store a record under "{collection}:{key}" and
//     restrict the collection's index to that prefix (on in DefaultConfig)
//   - DefaultCollection and MaxParallelism for the record store
//
// Hash storage formats data values as strings (lists as JSON arrays) and
// vectors as little-endian FLOAT32 blobs. JSON storage keeps the native JSON
// types; times are RFC 3339 strings and UUIDs are canonical strings. The key
// is never stored inside the record.
//
// # Direct Usage (Without FX)
//
//	import (
//		"github.com/Aleph-Alpha/vectorstore/v1/redis"
//		"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
//	)
//
//	client, err := redis.NewClient(redis.FromEndpoint("localhost", 6379).
//		WithStorage(redis.StorageJSON).
//		WithDefaultCollection("hotels"))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	manager := redis.NewCollectionManager(client)
//	if err := manager.CreateCollection(ctx, "hotels", schema); err != nil {
//		return err
//	}
//
//	store, err := redis.NewStore(client, schema, nil)
//	key, err := store.Upsert(ctx, vectordb.Record[string]{
//		Key:     "h-1",
//		Data:    map[string]any{"Name": "Lakeside"},
//		Vectors: map[string][]float32{"Embedding": embedding},
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//		redis.FXModule,
//		logger.FXModule, // Optional: provides logger
//		fx.Provide(
//			func() redis.Config { return loadRedisConfig() },
//		),
//	)
//
// FailoverFXModule does the same for a Sentinel setup from a FailoverConfig.
//
// # Index Translation
//
// Full-text strings become TEXT fields; other filterable strings, booleans,
// times and UUIDs become TAG fields; numbers become NUMERIC fields. Vectors
// become VECTOR fields with HNSW (default) or FLAT, TYPE FLOAT32 and
// DISTANCE_METRIC COSINE (default), IP or L2. Manhattan distance is rejected
// with vectordb.UnsupportedConfigurationError before any command is sent.
//
// # Observability (Observer Hook)
//
// The observer receives one event per Redis command:
//   - Component: "redis"
//   - Operations: "hgetall", "hset", "json.get", "json.set", "del",
//     "ft.create", "ft.dropindex", "ft._list"
//   - Resource: key names (truncated for large batches) or the index name
//   - Size: records written, fields read or keys deleted
//
// Failed commands are also logged through the configured Logger.
//
// # Thread Safety
//
// RedisClient, the stores and the collection manager are safe for concurrent
// use. GetBatch issues up to MaxParallelism HGETALL or JSON.GET commands at
// once.
package redis
