package metrics

import (
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/observability"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// RecordOperation counts one operation and observes its duration.
// Example: defer func(start time.Time) { m.RecordOperation("qdrant", "get", start, err) }(time.Now())
func (m *Metrics) RecordOperation(component, operation string, start time.Time, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.operationsTotal.WithLabelValues(component, operation, status).Inc()
	m.operationDuration.WithLabelValues(component, operation).Observe(time.Since(start).Seconds())
}

// AddRecords adds n to the processed-records counter. Non-positive n is ignored.
func (m *Metrics) AddRecords(component, operation string, n int) {
	if n <= 0 {
		return
	}
	m.recordsTotal.WithLabelValues(component, operation).Add(float64(n))
}

// Observer returns an observability.Observer backed by these metrics.
func (m *Metrics) Observer() observability.Observer {
	return observability.ObserverFunc(func(ctx observability.OperationContext) {
		status := statusSuccess
		if ctx.Error != nil {
			status = statusError
		}
		m.operationsTotal.WithLabelValues(ctx.Component, ctx.Operation, status).Inc()
		m.operationDuration.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())
		m.AddRecords(ctx.Component, ctx.Operation, int(ctx.Size))
	})
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
