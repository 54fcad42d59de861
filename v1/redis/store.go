package redis

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
)

// Client is what stores and collection managers need from a Redis client:
// the commands and the record layout. *RedisClient implements it.
type Client interface {
	Commands
	Layout() Layout
}

var _ Client = (*RedisClient)(nil)

// hashBackend implements vectordb.Backend over hashes.
type hashBackend struct {
	cmds   Commands
	layout Layout
}

func (b *hashBackend) Name() string { return BackendName }

func (b *hashBackend) Get(ctx context.Context, collection, key string, _ bool) (HashRecord, bool, error) {
	fields, err := b.cmds.HGetAll(ctx, b.layout.key(collection, key))
	if err != nil {
		return HashRecord{}, false, vectordb.NewBackendOperationError(BackendName, "hgetall", collection, err)
	}
	if len(fields) == 0 {
		return HashRecord{}, false, nil
	}
	return HashRecord{Key: key, Fields: fields}, true, nil
}

func (b *hashBackend) Upsert(ctx context.Context, collection string, records []HashRecord) error {
	prefixed := make([]HashRecord, len(records))
	for i, rec := range records {
		// An empty hash is never written, so it would read back as missing.
		if len(rec.Fields) == 0 {
			return vectordb.NewMappingError("", nil, "record %q maps to a hash without fields", rec.Key)
		}
		prefixed[i] = HashRecord{Key: b.layout.key(collection, rec.Key), Fields: rec.Fields}
	}
	return vectordb.NewBackendOperationError(BackendName, "hset", collection, b.cmds.ReplaceHashes(ctx, prefixed))
}

func (b *hashBackend) Delete(ctx context.Context, collection string, keys []string) error {
	return vectordb.NewBackendOperationError(BackendName, "del", collection, b.cmds.Del(ctx, b.layout.keys(collection, keys)...))
}

// jsonBackend implements vectordb.Backend over RedisJSON documents.
type jsonBackend struct {
	cmds   Commands
	layout Layout
}

func (b *jsonBackend) Name() string { return BackendName }

func (b *jsonBackend) Get(ctx context.Context, collection, key string, _ bool) (JSONRecord, bool, error) {
	raw, err := b.cmds.JSONGet(ctx, b.layout.key(collection, key))
	if IsNilError(err) {
		return JSONRecord{}, false, nil
	}
	if err != nil {
		return JSONRecord{}, false, vectordb.NewBackendOperationError(BackendName, "json.get", collection, err)
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return JSONRecord{}, false, vectordb.NewMappingError("", err, "invalid JSON document at key %q", key)
	}
	return JSONRecord{Key: key, Document: doc}, true, nil
}

func (b *jsonBackend) Upsert(ctx context.Context, collection string, records []JSONRecord) error {
	prefixed := make([]JSONRecord, len(records))
	for i, rec := range records {
		prefixed[i] = JSONRecord{Key: b.layout.key(collection, rec.Key), Document: rec.Document}
	}
	return vectordb.NewBackendOperationError(BackendName, "json.set", collection, b.cmds.SetJSONDocuments(ctx, prefixed))
}

func (b *jsonBackend) Delete(ctx context.Context, collection string, keys []string) error {
	return vectordb.NewBackendOperationError(BackendName, "del", collection, b.cmds.Del(ctx, b.layout.keys(collection, keys)...))
}

func (l Layout) keys(collection string, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = l.key(collection, k)
	}
	return out
}

// StoreOptions configures NewHashStore and NewJSONStore. N is HashRecord or
// JSONRecord.
type StoreOptions[N any] struct {
	// Schema is the explicit schema; it takes precedence over RecordType.
	Schema *vectordb.Schema

	// RecordType is a struct type with `vectordb` tags, used when Schema is nil.
	RecordType reflect.Type

	// Mapping selects the default mapper of the storage type or a custom mapper.
	Mapping vectordb.Mapping[string, N]

	// StoreOptions are passed to vectordb.NewRecordStore.
	StoreOptions []vectordb.StoreOption
}

func (o StoreOptions[N]) discover(client Client) (*vectordb.Schema, error) {
	if client == nil {
		return nil, vectordb.NewArgumentError("client", "must not be nil")
	}
	return vectordb.Discover(o.Schema, o.RecordType, DiscoveryOptions())
}

// NewHashStore builds a record store over hashes. The client's layout must
// use hash storage.
//
// Example:
//
//	store, err := redis.NewHashStore(client, redis.StoreOptions[redis.HashRecord]{
//	    RecordType: reflect.TypeFor[Doc](),
//	})
func NewHashStore(client Client, opts StoreOptions[HashRecord]) (*vectordb.RecordStore[string, HashRecord], error) {
	schema, err := opts.discover(client)
	if err != nil {
		return nil, err
	}
	layout := client.Layout()
	if s := layout.storage(); s != StorageHash {
		return nil, vectordb.NewArgumentError("storage", "hash store requires hash storage, client uses %q", s)
	}

	mapper, err := opts.Mapping.Resolve(NewHashMapper(schema))
	if err != nil {
		return nil, err
	}
	return vectordb.NewRecordStore[string, HashRecord](&hashBackend{cmds: client, layout: layout}, schema, mapper, layout.StoreConfig(), opts.StoreOptions...)
}

// NewJSONStore builds a record store over RedisJSON documents. The client's
// layout must use JSON storage.
func NewJSONStore(client Client, opts StoreOptions[JSONRecord]) (*vectordb.RecordStore[string, JSONRecord], error) {
	schema, err := opts.discover(client)
	if err != nil {
		return nil, err
	}
	layout := client.Layout()
	if s := layout.storage(); s != StorageJSON {
		return nil, vectordb.NewArgumentError("storage", "JSON store requires JSON storage, client uses %q", s)
	}

	mapper, err := opts.Mapping.Resolve(NewJSONMapper(schema))
	if err != nil {
		return nil, err
	}
	return vectordb.NewRecordStore[string, JSONRecord](&jsonBackend{cmds: client, layout: layout}, schema, mapper, layout.StoreConfig(), opts.StoreOptions...)
}

// NewStore builds a store with the default mapper of the client's storage
// type. Use NewHashStore or NewJSONStore for a custom mapper.
func NewStore(client Client, schema *vectordb.Schema, recordType reflect.Type, opts ...vectordb.StoreOption) (vectordb.Store[string], error) {
	if client == nil {
		return nil, vectordb.NewArgumentError("client", "must not be nil")
	}
	if client.Layout().storage() == StorageJSON {
		store, err := NewJSONStore(client, StoreOptions[JSONRecord]{Schema: schema, RecordType: recordType, StoreOptions: opts})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := NewHashStore(client, StoreOptions[HashRecord]{Schema: schema, RecordType: recordType, StoreOptions: opts})
	if err != nil {
		return nil, err
	}
	return store, nil
}
