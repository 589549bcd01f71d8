package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		scansTotal,
		rewardsIssuedTotal,
		scanLatencyMs,
	)
}

var (
	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scans_total",
			Help: "Count of processed scans by outcome.",
		},
		[]string{"outcome"}, // accepted|daily_limit|malformed|business_not_found|tx_failed|unauthenticated
	)

	rewardsIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rewards_issued_total",
			Help: "Total number of rewards minted at scan milestones.",
		},
	)

	scanLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scan_latency_ms",
			Help:    "RecordScan end-to-end latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
		},
	)
)

func IncScan(outcome string) {
	scansTotal.WithLabelValues(outcome).Inc()
}

func IncRewardsIssued() {
	rewardsIssuedTotal.Inc()
}

func ObserveScanLatency(ms float64) {
	scanLatencyMs.Observe(ms)
}

// RewardsIssuedCounter exposes the mint counter for test assertions.
func RewardsIssuedCounter() prometheus.Counter { return rewardsIssuedTotal }
