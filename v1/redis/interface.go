package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Commands is the set of Redis commands the record store and the collection
// manager need. It is implemented by *RedisClient; tests use an in-memory fake.
//
// Keys passed to Commands are full Redis keys, collection prefixes included.
type Commands interface {
	// HGetAll returns all fields of a hash. A missing key yields an empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// ReplaceHashes replaces each hash with the given fields in one
	// transaction, so fields absent from a record do not linger.
	ReplaceHashes(ctx context.Context, records []HashRecord) error

	// JSONGet returns the root document of key. A missing key yields redis.Nil.
	JSONGet(ctx context.Context, key string) (string, error)

	// SetJSONDocuments writes each document at the root path in one pipeline.
	SetJSONDocuments(ctx context.Context, records []JSONRecord) error

	// Del removes keys.
	Del(ctx context.Context, keys ...string) error

	// FTCreate creates a search index.
	FTCreate(ctx context.Context, index string, options *redis.FTCreateOptions, fields ...*redis.FieldSchema) error

	// FTDropIndex drops a search index and, with deleteDocs, the documents it covers.
	FTDropIndex(ctx context.Context, index string, deleteDocs bool) error

	// FTList returns the names of all search indexes.
	FTList(ctx context.Context) ([]string, error)
}

var _ Commands = (*RedisClient)(nil)
