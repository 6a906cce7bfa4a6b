package fulfillment

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the fulfillment specific collectors.
type Metrics struct {
	operations      *prometheus.CounterVec
	skippedReceipts prometheus.Counter
}

// NewMetrics registers collectors against registerer, falling back to the
// default registerer when nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_fulfillment_operations_total",
		Help: "Fulfillment restlet operations partitioned by operation and result.",
	}, []string{"operation", "result"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "odyssey_fulfillment_receipt_lines_skipped_total",
		Help: "Receipt lines ignored because their index was outside the fulfillment.",
	})
	registerer.MustRegister(operations, skipped)
	return &Metrics{operations: operations, skippedReceipts: skipped}
}

// ObserveOperation counts an operation outcome.
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	result := "success"
	switch {
	case err == nil:
	case IsValidation(err):
		result = "invalid"
	case IsNotFound(err):
		result = "not_found"
	default:
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
}

// AddSkippedReceipts adds n skipped receipt lines.
func (m *Metrics) AddSkippedReceipts(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedReceipts.Add(float64(n))
}
