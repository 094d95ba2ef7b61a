package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	storeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_operations_total",
			Help: "Document store operations by type and outcome.",
		},
		[]string{"op", "outcome"},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_cache_requests_total",
			Help: "Document cache lookups by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	register(storeOps, cacheRequests)
}

func IncStoreOp(op, outcome string) {
	storeOps.WithLabelValues(op, outcome).Inc()
}

func IncCacheRequest(kind, result string) {
	cacheRequests.WithLabelValues(kind, result).Inc()
}
