package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ping checks if the Redis server is reachable and responsive.
// It returns an error if the connection fails.
func (r *RedisClient) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.Ping(ctx).Err()
}

// PoolStats returns connection pool statistics.
// Useful for monitoring connection pool health.
func (r *RedisClient) PoolStats() *redis.PoolStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.PoolStats()
}

// --- Hash Operations ---

// HGetAll returns all fields and values of the hash stored at key.
func (r *RedisClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.HGetAll(ctx, key).Result()
	r.report("hgetall", key, start, err, int64(len(result)), nil)
	return result, err
}

// ReplaceHashes deletes and rewrites every hash inside one MULTI/EXEC block.
func (r *RedisClient) ReplaceHashes(ctx context.Context, records []HashRecord) error {
	if len(records) == 0 {
		return nil
	}
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rec := range records {
			pipe.Del(ctx, rec.Key)
			if len(rec.Fields) > 0 {
				pipe.HSet(ctx, rec.Key, rec.Fields)
			}
		}
		return nil
	})
	r.report("hset", keysResource(hashKeys(records)), start, err, int64(len(records)), map[string]interface{}{
		"count": len(records),
	})
	return err
}

// --- JSON Operations ---

// JSONGet returns the root JSON document stored at key, or redis.Nil.
func (r *RedisClient) JSONGet(ctx context.Context, key string) (string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.JSONGet(ctx, key).Result()
	if err == nil && result == "" {
		err = redis.Nil
	}
	r.report("json.get", key, start, err, int64(len(result)), nil)
	return result, err
}

// SetJSONDocuments writes every document at the root path in one pipeline.
func (r *RedisClient) SetJSONDocuments(ctx context.Context, records []JSONRecord) error {
	if len(records) == 0 {
		return nil
	}
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rec := range records {
			pipe.JSONSet(ctx, rec.Key, "$", rec.Document)
		}
		return nil
	})
	r.report("json.set", keysResource(jsonKeys(records)), start, err, int64(len(records)), map[string]interface{}{
		"count": len(records),
	})
	return err
}

// --- Key Operations ---

// Del removes the given keys. Missing keys are ignored.
func (r *RedisClient) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, err := r.client.Del(ctx, keys...).Result()
	r.report("del", keysResource(keys), start, err, n, map[string]interface{}{
		"count": len(keys),
	})
	return err
}

// --- Search Index Operations ---

// FTCreate creates a search index.
func (r *RedisClient) FTCreate(ctx context.Context, index string, options *redis.FTCreateOptions, fields ...*redis.FieldSchema) error {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	err := r.client.FTCreate(ctx, index, options, fields...).Err()
	r.report("ft.create", index, start, err, int64(len(fields)), nil)
	return err
}

// FTDropIndex drops a search index, optionally with the documents it covers.
func (r *RedisClient) FTDropIndex(ctx context.Context, index string, deleteDocs bool) error {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	err := r.client.FTDropIndexWithArgs(ctx, index, &redis.FTDropIndexOptions{DeleteDocs: deleteDocs}).Err()
	r.report("ft.dropindex", index, start, err, 0, map[string]interface{}{
		"delete_docs": deleteDocs,
	})
	return err
}

// FTList returns the names of all search indexes.
func (r *RedisClient) FTList(ctx context.Context) ([]string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	names, err := r.client.FT_List(ctx).Result()
	r.report("ft._list", "", start, err, int64(len(names)), nil)
	return names, err
}
