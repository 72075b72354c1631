package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolutions partitioned by outcome and device type
	resolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartlink_resolve_total",
			Help: "Total number of smart link resolutions",
		},
		[]string{"outcome", "device"},
	)

	// Member count probes partitioned by result
	memberProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartlink_member_probe_total",
			Help: "Total number of live member count probes",
		},
		[]string{"result"},
	)

	// Member count cache hits
	memberCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartlink_member_cache_hits_total",
			Help: "Member counts served from cache without probing",
		},
	)

	// Resolutions that landed on the overflow fallback group
	fallbackSelections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartlink_fallback_selections_total",
			Help: "Resolutions where every group was at capacity",
		},
	)
)
