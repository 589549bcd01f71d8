package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		rewardsExpiredTotal,
		dynamicCodesPurgedTotal,
	)
}

var (
	rewardsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rewards_expired_total",
			Help: "Rewards that lapsed unredeemed, as observed by the sweep worker.",
		},
	)

	dynamicCodesPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dynamic_codes_purged_total",
			Help: "Expired dynamic codes removed by the purge worker.",
		},
	)
)

func AddRewardsExpired(count int) {
	rewardsExpiredTotal.Add(float64(count))
}

func AddDynamicCodesPurged(count int) {
	dynamicCodesPurgedTotal.Add(float64(count))
}
