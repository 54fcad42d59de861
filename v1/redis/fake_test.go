package redis

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// replyError mimics an error reply from the server.
type replyError string

func (e replyError) Error() string { return string(e) }
func (replyError) RedisError()     {}

// fakeRedis is an in-memory Client. Hashes and JSON documents share one
// keyspace like they do on the server.
type fakeRedis struct {
	mu      sync.Mutex
	layout  Layout
	hashes  map[string]map[string]string
	docs    map[string]string
	indexes map[string]*IndexDefinition

	// err, when set, is returned by every command.
	err   error
	calls []string
}

var _ Client = (*fakeRedis)(nil)

func newFakeRedis(layout Layout) *fakeRedis {
	return &fakeRedis{
		layout:  layout,
		hashes:  map[string]map[string]string{},
		docs:    map[string]string{},
		indexes: map[string]*IndexDefinition{},
	}
}

func (f *fakeRedis) Layout() Layout { return f.layout }

func (f *fakeRedis) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeRedis) HGetAll(_ context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("hgetall"); err != nil {
		return nil, err
	}
	return maps.Clone(f.hashes[key]), nil
}

func (f *fakeRedis) ReplaceHashes(_ context.Context, records []HashRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("hset"); err != nil {
		return err
	}
	for _, rec := range records {
		delete(f.docs, rec.Key)
		delete(f.hashes, rec.Key)
		// Redis does not keep empty hashes.
		if len(rec.Fields) > 0 {
			f.hashes[rec.Key] = maps.Clone(rec.Fields)
		}
	}
	return nil
}

func (f *fakeRedis) JSONGet(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("json.get"); err != nil {
		return "", err
	}
	doc, ok := f.docs[key]
	if !ok {
		return "", redis.Nil
	}
	return doc, nil
}

func (f *fakeRedis) SetJSONDocuments(_ context.Context, records []JSONRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("json.set"); err != nil {
		return err
	}
	for _, rec := range records {
		b, err := json.Marshal(rec.Document)
		if err != nil {
			return err
		}
		delete(f.hashes, rec.Key)
		f.docs[rec.Key] = string(b)
	}
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("del"); err != nil {
		return err
	}
	for _, k := range keys {
		delete(f.hashes, k)
		delete(f.docs, k)
	}
	return nil
}

func (f *fakeRedis) FTCreate(_ context.Context, index string, options *redis.FTCreateOptions, fields ...*redis.FieldSchema) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ft.create"); err != nil {
		return err
	}
	if _, ok := f.indexes[index]; ok {
		return replyError("Index already exists")
	}
	f.indexes[index] = &IndexDefinition{Name: index, Options: options, Fields: fields}
	return nil
}

func (f *fakeRedis) FTDropIndex(_ context.Context, index string, deleteDocs bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ft.dropindex"); err != nil {
		return err
	}
	def, ok := f.indexes[index]
	if !ok {
		return replyError("Unknown Index name")
	}
	delete(f.indexes, index)
	if deleteDocs {
		for _, p := range def.Options.Prefix {
			prefix := p.(string)
			for k := range f.hashes {
				if strings.HasPrefix(k, prefix) {
					delete(f.hashes, k)
				}
			}
			for k := range f.docs {
				if strings.HasPrefix(k, prefix) {
					delete(f.docs, k)
				}
			}
		}
	}
	return nil
}

func (f *fakeRedis) FTList(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ft._list"); err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(f.indexes)), nil
}
