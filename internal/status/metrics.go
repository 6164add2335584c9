package status

import "github.com/prometheus/client_golang/prometheus"

var (
	collectTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netstatus_collect_total",
			Help: "Number of status collections by result.",
		},
		[]string{"result"},
	)
	collectDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netstatus_collect_duration_seconds",
			Help:    "Time spent reading both sources and merging them.",
			Buckets: prometheus.DefBuckets,
		},
	)
	activeLeases = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "netstatus_active_leases",
			Help: "Active dhcp leases seen by the last successful collection.",
		},
	)
	neighborEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "netstatus_neighbor_entries",
			Help: "Neighbor table rows seen by the last successful collection.",
		},
	)
)

func init() {
	prometheus.MustRegister(collectTotal)
	prometheus.MustRegister(collectDuration)
	prometheus.MustRegister(activeLeases)
	prometheus.MustRegister(neighborEntries)
}
