// Package observability defines the hook through which clients and stores report
// completed operations. Implementations feed metrics, tracing or audit logs; the
// Prometheus implementation lives in the metrics package.
package observability

import "time"

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component is the emitting package, e.g. "qdrant", "redis", "azuresearch".
	Component string

	// Operation is the logical operation, e.g. "get", "upsert_batch", "create_collection".
	Operation string

	// Resource is the primary resource, usually the collection name.
	Resource string

	// SubResource carries extra context such as a key.
	SubResource string

	// Duration is the wall-clock time the operation took.
	Duration time.Duration

	// Error is the operation error, nil on success.
	Error error

	// Size is the number of records or bytes involved, when meaningful.
	Size int64

	// Metadata holds any additional attributes.
	Metadata map[string]interface{}
}

// Observer receives operation notifications. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) { f(ctx) }

// Multi fans a notification out to every non-nil observer.
func Multi(observers ...Observer) Observer {
	out := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return ObserverFunc(func(ctx OperationContext) {
		for _, o := range out {
			o.ObserveOperation(ctx)
		}
	})
}
