package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SettlementMetrics holds all transaction settlement metrics
type SettlementMetrics struct {
	TransactionsCreatedTotal prometheus.CounterVec
	TransactionsSettledTotal prometheus.CounterVec
	TransactionsFailedTotal  prometheus.CounterVec

	StepsSubmittedTotal prometheus.CounterVec
	StepsSucceededTotal prometheus.CounterVec
	StepsFailedTotal    prometheus.CounterVec
	StepsRevertedTotal  prometheus.CounterVec

	ExchangeOrdersTotal prometheus.CounterVec

	ReconcilerRunsTotal prometheus.CounterVec
	ReconcilerDuration  prometheus.HistogramVec

	SettlementErrorsTotal prometheus.CounterVec
}

// NewSettlementMetrics registers and returns the metrics set
func NewSettlementMetrics() *SettlementMetrics {
	return &SettlementMetrics{
		TransactionsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_created_total",
				Help: "Total number of created transactions",
			},
			[]string{"type", "transfer_type"},
		),

		TransactionsSettledTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_settled_total",
				Help: "Total number of transactions that reached SENT",
			},
			[]string{"type", "transfer_type"},
		),

		TransactionsFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_failed_total",
				Help: "Total number of transactions that reached FAILED",
			},
			[]string{"type", "transfer_type"},
		),

		StepsSubmittedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_steps_submitted_total",
				Help: "Total number of steps submitted to a rail",
			},
			[]string{"step_type"},
		),

		StepsSucceededTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_steps_succeeded_total",
				Help: "Total number of steps finalized as SUCCESS",
			},
			[]string{"step_type"},
		),

		StepsFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_steps_failed_total",
				Help: "Total number of steps finalized as FAILED",
			},
			[]string{"step_type"},
		),

		StepsRevertedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_steps_reverted_total",
				Help: "Total number of steps compensated after a later step failed",
			},
			[]string{"step_type"},
		),

		ExchangeOrdersTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_orders_total",
				Help: "Total number of exchange orders by final status",
			},
			[]string{"status"},
		),

		ReconcilerRunsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconciler_runs_total",
				Help: "Total number of reconciler passes",
			},
			[]string{"kind"},
		),

		ReconcilerDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reconciler_pass_duration_seconds",
				Help:    "Duration of one reconciler pass in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms, 20ms, 40ms...
			},
			[]string{"kind"},
		),

		SettlementErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_errors_total",
				Help: "Total number of errors while planning or executing transactions",
			},
			[]string{"error_type"},
		),
	}
}

// RecordTransactionCreated records a newly planned transaction
func (m *SettlementMetrics) RecordTransactionCreated(txType, transferType string) {
	m.TransactionsCreatedTotal.WithLabelValues(txType, transferType).Inc()
}

// RecordTransactionSettled records a transaction reaching SENT
func (m *SettlementMetrics) RecordTransactionSettled(txType, transferType string) {
	m.TransactionsSettledTotal.WithLabelValues(txType, transferType).Inc()
}

// RecordTransactionFailed records a transaction reaching FAILED
func (m *SettlementMetrics) RecordTransactionFailed(txType, transferType string) {
	m.TransactionsFailedTotal.WithLabelValues(txType, transferType).Inc()
}

// RecordStepSubmitted records a step handed to its rail
func (m *SettlementMetrics) RecordStepSubmitted(stepType string) {
	m.StepsSubmittedTotal.WithLabelValues(stepType).Inc()
}

// RecordStepSucceeded records a step finalized as SUCCESS
func (m *SettlementMetrics) RecordStepSucceeded(stepType string) {
	m.StepsSucceededTotal.WithLabelValues(stepType).Inc()
}

// RecordStepFailed records a step finalized as FAILED
func (m *SettlementMetrics) RecordStepFailed(stepType string) {
	m.StepsFailedTotal.WithLabelValues(stepType).Inc()
}

// RecordStepReverted records a compensated step
func (m *SettlementMetrics) RecordStepReverted(stepType string) {
	m.StepsRevertedTotal.WithLabelValues(stepType).Inc()
}

// RecordExchangeOrder records an exchange order reaching a terminal status
func (m *SettlementMetrics) RecordExchangeOrder(status string) {
	m.ExchangeOrdersTotal.WithLabelValues(status).Inc()
}

// RecordReconcilerPass records one reconciler pass
func (m *SettlementMetrics) RecordReconcilerPass(kind string, durationSeconds float64) {
	m.ReconcilerRunsTotal.WithLabelValues(kind).Inc()
	m.ReconcilerDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordError records a planning or execution error
func (m *SettlementMetrics) RecordError(errorType string) {
	m.SettlementErrorsTotal.WithLabelValues(errorType).Inc()
}
