package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		txRetriesTotal,
		txFailuresTotal,
	)
}

var (
	txRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "db_tx_retries_total",
			Help: "Serialization conflicts that caused a transaction callback re-run.",
		},
	)

	txFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "db_tx_failures_total",
			Help: "Transactions that failed after exhausting conflict retries.",
		},
	)
)

func IncTxRetry()   { txRetriesTotal.Inc() }
func IncTxFailure() { txFailuresTotal.Inc() }

// TxRetriesCounter exposes the retry counter for test assertions.
func TxRetriesCounter() prometheus.Counter { return txRetriesTotal }

// TxFailuresCounter exposes the failure counter for test assertions.
func TxFailuresCounter() prometheus.Counter { return txFailuresTotal }
