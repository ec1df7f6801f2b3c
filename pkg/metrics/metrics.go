package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vault"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	DatabaseConnectionsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "database_connections",
		Help:      "SQL pool connections by state.",
	}, []string{"state"})

	ChainCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chain_calls_total",
		Help:      "JSON-RPC calls by leg and outcome.",
	}, []string{"leg", "outcome"})

	ChainCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chain_call_duration_seconds",
		Help:      "JSON-RPC call latency by leg.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"leg"})

	ExplorerCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "explorer_calls_total",
		Help:      "Block explorer calls by action and outcome.",
	}, []string{"action", "outcome"})

	BalanceCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_cache_total",
		Help:      "Balance snapshot cache lookups by result.",
	}, []string{"result"})

	LedgerOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_operations_total",
		Help:      "Ledger mutations by operation and outcome.",
	}, []string{"operation", "outcome"})

	LedgerAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_amount_usdt_total",
		Help:      "Sum of committed ledger amounts by operation.",
	}, []string{"operation"})

	PINVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pin_verifications_total",
		Help:      "PIN verifications by outcome.",
	}, []string{"outcome"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Ledger events published by subject and outcome.",
	}, []string{"subject", "outcome"})

	ReconciliationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciliation_runs_total",
		Help:      "Drift report runs by status.",
	}, []string{"status"})

	ReconciliationDrift = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reconciliation_drift_usdt",
		Help:      "Sum of absolute ledger drift over drifted users in the last run.",
	})

	ReconciliationDriftedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reconciliation_drifted_users",
		Help:      "Users outside the drift tolerance in the last run.",
	})
)

// RecordDrift publishes the aggregate outcome of a completed drift run.
func RecordDrift(absoluteDrift float64, driftedUsers int) {
	ReconciliationDrift.Set(absoluteDrift)
	ReconciliationDriftedUsers.Set(float64(driftedUsers))
}

// RecordLedgerOperation counts a ledger mutation and, on success, its amount.
func RecordLedgerOperation(operation, outcome string, amount float64) {
	LedgerOperationsTotal.WithLabelValues(operation, outcome).Inc()
	if outcome == "success" && amount > 0 {
		LedgerAmountTotal.WithLabelValues(operation).Add(amount)
	}
}
