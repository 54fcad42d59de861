// Package logger provides structured JSON logging for the vector store packages,
// built on Uber's Zap.
//
// Every entry carries the process id and the configured service name. The
// *WithContext methods additionally attach trace_id and span_id when tracing is
// enabled and the context carries a valid OpenTelemetry span, so log lines can
// be correlated with the vectordb.* spans emitted by a RecordStore.
//
// Basic Usage:
//
//	import "github.com/Aleph-Alpha/vectorstore/v1/logger"
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:       logger.Info,
//		ServiceName: "indexer",
//	})
//
//	log.Info("collection created", nil, map[string]interface{}{"collection": "hotels"})
//	log.Error("upsert failed", err, map[string]interface{}{"backend": "qdrant"})
//
// Stores accept any implementation of the Logger interface:
//
//	store, err := vectordb.NewRecordStore(backend, schema, mapper, cfg,
//		vectordb.WithLogger(log),
//	)
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: logger.Debug, ServiceName: "indexer"}
//		}),
//	)
//
// The module provides *LoggerClient and Logger and flushes buffered entries on
// shutdown.
//
// Configuration:
//
//	ZAP_LOGGER_LEVEL=debug
//	LOGGER_SERVICE_NAME=indexer
//	LOGGER_ENABLE_TRACING=true
//
// Levels other than debug, info, warning and error fall back to info.
package logger
