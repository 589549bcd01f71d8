package metrics

import "github.com/prometheus/client_golang/prometheus"

var cacheRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Cache lookups partitioned by cache name and hit/miss.",
	},
	[]string{"cache", "result"},
)

func init() {
	register(cacheRequestsTotal)
}

func IncCacheRequest(cache, result string) {
	cacheRequestsTotal.WithLabelValues(cache, result).Inc()
}
