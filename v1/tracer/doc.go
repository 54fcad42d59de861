// Package tracer configures OpenTelemetry tracing for services that use the
// vector store packages.
//
// NewClient builds an SDK tracer provider tagged with the service name and
// environment, optionally exporting over OTLP/HTTP, and installs it as the
// global provider. Stores pick it up either implicitly through the global
// provider or explicitly:
//
//	tr, err := tracer.NewClient(tracer.Config{ServiceName: "search"}, log)
//	if err != nil {
//		return err
//	}
//	defer tr.Shutdown(ctx)
//
//	store, err := vectordb.NewRecordStore(backend, schema, mapper, cfg, tr.StoreOption())
//
// Every store operation then produces a "vectordb.<operation>" span.
//
// GetCarrier and SetCarrierOnContext move the trace context across process
// boundaries as W3C traceparent/tracestate headers.
package tracer
