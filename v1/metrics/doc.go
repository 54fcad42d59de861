// Package metrics exposes Prometheus metrics for vector store operations.
//
// Each Metrics instance owns an isolated registry wrapped with a constant
// service label and serves it on /metrics. Three series are registered up front:
//
//	vectordb_operations_total{component,operation,status}
//	vectordb_operation_duration_seconds{component,operation}
//	vectordb_records_total{component,operation}
//
// Basic Usage:
//
//	import "github.com/Aleph-Alpha/vectorstore/v1/metrics"
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "indexer"})
//	go m.Server.ListenAndServe()
//
//	store, err := vectordb.NewRecordStore(backend, schema, mapper, cfg,
//		vectordb.WithObserver(m.Observer()),
//	)
//
// Backend clients report through the same observability.Observer:
//
//	client.WithObserver(m.Observer())
//
// Custom series can be added with CreateCounter, CreateHistogram and CreateGauge.
// They are registered on the service registry and prefixed with Config.Namespace.
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		fx.Provide(func() metrics.Config {
//			return metrics.Config{Address: ":9090", ServiceName: "indexer"}
//		}),
//	)
//
// The module provides *Metrics, MetricsCollector and observability.Observer, and
// starts and stops the HTTP server with the application.
//
// Configuration:
//
//	METRICS_ADDRESS=:9090
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true
//	METRICS_NAMESPACE=search
//	METRICS_SERVICE_NAME=indexer
package metrics
