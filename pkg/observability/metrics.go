package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	registryObjects = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "objrepo",
			Subsystem: "registry",
			Name:      "objects",
			Help:      "Objects currently held by the registry.",
		},
	)
	registryOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "objrepo",
			Subsystem: "registry",
			Name:      "operations_total",
			Help:      "Registry operations by kind.",
		},
		[]string{"op"},
	)
	registryEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "objrepo",
			Subsystem: "registry",
			Name:      "evictions_total",
			Help:      "Objects removed by the TTL sweep.",
		},
	)
	syncRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "objrepo",
			Subsystem: "sync",
			Name:      "records_total",
			Help:      "Records merged from replication snapshots.",
		},
	)
	electionRounds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "objrepo",
			Subsystem: "election",
			Name:      "rounds_total",
			Help:      "Completed election rounds.",
		},
	)
	probeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "objrepo",
			Subsystem: "election",
			Name:      "probe_failures_total",
			Help:      "Uptime probes that failed, by peer.",
		},
		[]string{"peer"},
	)
	nodePrimary = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "objrepo",
			Subsystem: "node",
			Name:      "primary",
			Help:      "1 when this node is primary, 0 otherwise.",
		},
	)
	roleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "objrepo",
			Subsystem: "node",
			Name:      "role_transitions_total",
			Help:      "Role changes applied by the election loop.",
		},
		[]string{"role"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			registryObjects, registryOps, registryEvictions, syncRecords,
			electionRounds, probeFailures, nodePrimary, roleTransitions,
		)
	})
}

func RecordRegistryOp(op string, objects int) {
	RegisterMetrics()
	registryOps.WithLabelValues(op).Inc()
	registryObjects.Set(float64(objects))
}

func RecordEviction(objects int) {
	RegisterMetrics()
	registryEvictions.Inc()
	registryObjects.Set(float64(objects))
}

func RecordSync(records, objects int) {
	RegisterMetrics()
	syncRecords.Add(float64(records))
	registryObjects.Set(float64(objects))
}

func RecordElectionRound() {
	RegisterMetrics()
	electionRounds.Inc()
}

func RecordProbeFailure(peer string) {
	RegisterMetrics()
	probeFailures.WithLabelValues(peer).Inc()
}

func RecordRole(role string, primary bool) {
	RegisterMetrics()
	roleTransitions.WithLabelValues(role).Inc()
	if primary {
		nodePrimary.Set(1)
	} else {
		nodePrimary.Set(0)
	}
}
