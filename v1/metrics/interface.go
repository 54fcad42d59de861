package metrics

import (
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector provides an interface for collecting and exposing vector store metrics.
// It abstracts Prometheus metric operations with support for counters, histograms, and gauges.
//
// This interface is implemented by the concrete *Metrics type.
type MetricsCollector interface {
	// RecordOperation counts one store/backend operation and observes its duration.
	RecordOperation(component, operation string, start time.Time, err error)

	// AddRecords adds n to the processed-records counter.
	AddRecords(component, operation string, n int)

	// Observer returns an observability.Observer that feeds this collector.
	Observer() observability.Observer

	// CreateCounter creates a new CounterVec metric and registers it.
	CreateCounter(name, help string, labels []string) *prometheus.CounterVec

	// CreateHistogram creates a new HistogramVec metric and registers it.
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec

	// CreateGauge creates a new GaugeVec metric and registers it.
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}
