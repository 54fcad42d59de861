package redis

import (
	"strings"
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/observability"
)

const component = "redis"

// maxResourceKeys bounds how many keys are rendered into an event resource.
const maxResourceKeys = 10

// report sends one command outcome to the observer and logs failures.
// A missing key (redis.Nil) is reported to the observer but not logged.
func (r *RedisClient) report(operation, resource string, start time.Time, err error, size int64, metadata map[string]interface{}) {
	if r == nil {
		return
	}
	if r.observer != nil {
		r.observer.ObserveOperation(observability.OperationContext{
			Component: component,
			Operation: operation,
			Resource:  resource,
			Duration:  time.Since(start),
			Error:     err,
			Size:      size,
			Metadata:  metadata,
		})
	}
	if !IsNilError(err) {
		r.logFailure(operation, resource, err)
	}
}

func (r *RedisClient) logFailure(operation, resource string, err error) {
	if err == nil || r.logger == nil {
		return
	}
	r.logger.Error("[Redis] command failed", err, map[string]interface{}{
		"operation": operation,
		"resource":  resource,
	})
}

func hashKeys(records []HashRecord) []string {
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Key
	}
	return keys
}

func jsonKeys(records []JSONRecord) []string {
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Key
	}
	return keys
}

func keysResource(keys []string) string {
	if len(keys) > maxResourceKeys {
		return strings.Join(keys[:maxResourceKeys], ",") + ",..."
	}
	return strings.Join(keys, ",")
}
