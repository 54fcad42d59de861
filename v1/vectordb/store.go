package vectordb

import (
	"context"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/logger"
	"github.com/Aleph-Alpha/vectorstore/v1/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxParallelism bounds the number of concurrent native requests issued
// by GetBatch.
const DefaultMaxParallelism = 50

// TracerName is the instrumentation name used for store spans.
const TracerName = "vectordb"

// StoreConfig configures a RecordStore.
type StoreConfig struct {
	// DefaultCollection is used when a call does not pass WithCollection.
	DefaultCollection string `yaml:"default_collection" env:"VECTORDB_DEFAULT_COLLECTION"`

	// MaxParallelism bounds GetBatch fan-out. Zero means DefaultMaxParallelism.
	MaxParallelism int `yaml:"max_parallelism" env:"VECTORDB_MAX_PARALLELISM" envDefault:"50"`
}

// Store is the backend-independent record API.
type Store[K comparable] interface {
	// Get returns the record stored under key. A missing key is a NotFoundError.
	Get(ctx context.Context, key K, opts ...Option) (Record[K], error)

	// GetBatch returns the records for keys, in key order. If any key is missing
	// the whole call fails with a NotFoundError and no records are returned.
	GetBatch(ctx context.Context, keys []K, opts ...Option) ([]Record[K], error)

	// Upsert inserts or replaces record and returns its key.
	Upsert(ctx context.Context, record Record[K], opts ...Option) (K, error)

	// UpsertBatch inserts or replaces records and returns their keys in input order.
	UpsertBatch(ctx context.Context, records []Record[K], opts ...Option) ([]K, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key K, opts ...Option) error

	// DeleteBatch removes keys.
	DeleteBatch(ctx context.Context, keys []K, opts ...Option) error
}

// Backend is the narrow native client surface a RecordStore drives. Backends
// translate their client failures into BackendOperationError.
type Backend[K comparable, N any] interface {
	// Name identifies the backend in errors, logs and metrics.
	Name() string

	// Get fetches one native record. found is false when the key does not exist.
	Get(ctx context.Context, collection string, key K, includeVectors bool) (native N, found bool, err error)

	// Upsert writes all records in one native call.
	Upsert(ctx context.Context, collection string, records []N) error

	// Delete removes keys in one native call.
	Delete(ctx context.Context, collection string, keys []K) error
}

// Option customizes a single store call.
type Option func(*callOptions)

type callOptions struct {
	collection     string
	includeVectors bool
}

// WithCollection overrides the store's default collection for one call.
func WithCollection(name string) Option {
	return func(o *callOptions) { o.collection = name }
}

// WithVectors controls whether Get and GetBatch return vector properties.
// The default is false.
func WithVectors(include bool) Option {
	return func(o *callOptions) { o.includeVectors = include }
}

func resolveOptions(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// StoreOption customizes a RecordStore at construction.
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger         logger.Logger
	observer       observability.Observer
	tracerProvider trace.TracerProvider
}

// WithLogger attaches a logger. Without one the store does not log.
func WithLogger(l logger.Logger) StoreOption {
	return func(o *storeOptions) { o.logger = l }
}

// WithObserver attaches an observer notified after every operation.
func WithObserver(obs observability.Observer) StoreOption {
	return func(o *storeOptions) { o.observer = obs }
}

// WithTracerProvider sets the provider for store spans. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) StoreOption {
	return func(o *storeOptions) { o.tracerProvider = tp }
}

// RecordStore implements Store over a Backend using a RecordMapper.
// It is safe for concurrent use.
type RecordStore[K comparable, N any] struct {
	backend  Backend[K, N]
	mapper   RecordMapper[K, N]
	schema   *Schema
	cfg      StoreConfig
	logger   logger.Logger
	observer observability.Observer
	tracer   trace.Tracer
}

var _ Store[string] = (*RecordStore[string, any])(nil)

// NewRecordStore builds a store. Backend packages wrap this in their own
// NewStore which resolves the Mapping and discovers the schema.
func NewRecordStore[K comparable, N any](backend Backend[K, N], schema *Schema, mapper RecordMapper[K, N], cfg StoreConfig, opts ...StoreOption) (*RecordStore[K, N], error) {
	if backend == nil {
		return nil, NewArgumentError("backend", "must not be nil")
	}
	if schema == nil {
		return nil, NewArgumentError("schema", "must not be nil")
	}
	if mapper == nil {
		return nil, NewArgumentError("mapper", "must not be nil")
	}
	if cfg.MaxParallelism < 0 {
		return nil, NewArgumentError("MaxParallelism", "must not be negative, got %d", cfg.MaxParallelism)
	}
	if cfg.MaxParallelism == 0 {
		cfg.MaxParallelism = DefaultMaxParallelism
	}

	so := storeOptions{}
	for _, opt := range opts {
		opt(&so)
	}
	tp := so.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &RecordStore[K, N]{
		backend:  backend,
		mapper:   mapper,
		schema:   schema,
		cfg:      cfg,
		logger:   so.logger,
		observer: so.observer,
		tracer:   tp.Tracer(TracerName),
	}, nil
}

// Schema returns the schema the store was built with.
func (s *RecordStore[K, N]) Schema() *Schema { return s.schema }

// Config returns the effective store configuration.
func (s *RecordStore[K, N]) Config() StoreConfig { return s.cfg }

func (s *RecordStore[K, N]) Get(ctx context.Context, key K, opts ...Option) (rec Record[K], err error) {
	o := resolveOptions(opts)
	collection, err := s.collection(o)
	if err != nil {
		return rec, err
	}

	ctx, done := s.begin(ctx, "get", collection, 1)
	defer func() { done(err) }()

	native, found, err := s.backend.Get(ctx, collection, key, o.includeVectors)
	if err != nil {
		return rec, err
	}
	if !found {
		return rec, &NotFoundError{Collection: collection, Key: fmt.Sprint(key)}
	}
	return s.mapper.FromStorage(native, s.mappingContext(o))
}

func (s *RecordStore[K, N]) GetBatch(ctx context.Context, keys []K, opts ...Option) (_ []Record[K], err error) {
	o := resolveOptions(opts)
	collection, err := s.collection(o)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []Record[K]{}, nil
	}

	ctx, done := s.begin(ctx, "get_batch", collection, len(keys))
	defer func() { done(err) }()

	mctx := s.mappingContext(o)
	results := make([]Record[K], len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxParallelism)
	for i, key := range keys {
		g.Go(func() error {
			native, found, err := s.backend.Get(gctx, collection, key, o.includeVectors)
			if err != nil {
				return err
			}
			if !found {
				return &NotFoundError{Collection: collection}
			}
			rec, err := s.mapper.FromStorage(native, mctx)
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *RecordStore[K, N]) Upsert(ctx context.Context, record Record[K], opts ...Option) (K, error) {
	keys, err := s.UpsertBatch(ctx, []Record[K]{record}, opts...)
	if err != nil {
		var zero K
		return zero, err
	}
	return keys[0], nil
}

func (s *RecordStore[K, N]) UpsertBatch(ctx context.Context, records []Record[K], opts ...Option) (_ []K, err error) {
	o := resolveOptions(opts)
	collection, err := s.collection(o)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []K{}, nil
	}

	ctx, done := s.begin(ctx, "upsert_batch", collection, len(records))
	defer func() { done(err) }()

	natives := make([]N, len(records))
	keys := make([]K, len(records))
	for i, r := range records {
		n, err := s.mapper.ToStorage(r)
		if err != nil {
			return nil, err
		}
		natives[i] = n
		keys[i] = r.Key
	}

	if err := s.backend.Upsert(ctx, collection, natives); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *RecordStore[K, N]) Delete(ctx context.Context, key K, opts ...Option) error {
	return s.DeleteBatch(ctx, []K{key}, opts...)
}

func (s *RecordStore[K, N]) DeleteBatch(ctx context.Context, keys []K, opts ...Option) (err error) {
	o := resolveOptions(opts)
	collection, err := s.collection(o)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	ctx, done := s.begin(ctx, "delete_batch", collection, len(keys))
	defer func() { done(err) }()

	return s.backend.Delete(ctx, collection, keys)
}

func (s *RecordStore[K, N]) collection(o callOptions) (string, error) {
	if o.collection != "" {
		return o.collection, nil
	}
	if s.cfg.DefaultCollection != "" {
		return s.cfg.DefaultCollection, nil
	}
	return "", NewArgumentError("collection", "no collection given and no default collection configured")
}

func (s *RecordStore[K, N]) mappingContext(o callOptions) MappingContext {
	return MappingContext{IncludeVectors: o.includeVectors, Schema: s.schema}
}

// begin opens a span and returns a completion func that ends it, logs and
// notifies the observer.
func (s *RecordStore[K, N]) begin(ctx context.Context, operation, collection string, size int) (context.Context, func(error)) {
	backend := s.backend.Name()
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, TracerName+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("vectordb.backend", backend),
			attribute.String("vectordb.collection", collection),
			attribute.Int("vectordb.records", size),
		))

	return ctx, func(err error) {
		duration := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if s.logger != nil {
			fields := map[string]interface{}{
				"backend":    backend,
				"operation":  operation,
				"collection": collection,
				"records":    size,
				"duration":   duration.String(),
			}
			switch {
			case err == nil:
				s.logger.DebugWithContext(ctx, "vector store operation completed", nil, fields)
			case IsNotFound(err):
				s.logger.DebugWithContext(ctx, "vector store records not found", err, fields)
			default:
				s.logger.ErrorWithContext(ctx, "vector store operation failed", err, fields)
			}
		}

		if s.observer != nil {
			s.observer.ObserveOperation(observability.OperationContext{
				Component: backend,
				Operation: operation,
				Resource:  collection,
				Duration:  duration,
				Error:     err,
				Size:      int64(size),
			})
		}
	}
}
