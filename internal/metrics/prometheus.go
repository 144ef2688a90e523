// Package metrics provides types.MetricsCollector implementations.
package metrics

import (
	"sync"

	"github.com/arloliu/solo/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing
// a PrometheusCollector that is never exercised registers nothing.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	isLeader           prometheus.Gauge
	stateTransitions   *prometheus.CounterVec
	leadershipAcquired prometheus.Counter
	storeOps           *prometheus.CounterVec
	storeLatency       *prometheus.HistogramVec
	heartbeats         *prometheus.CounterVec
	gateOpen           prometheus.Gauge
	gateChanges        *prometheus.CounterVec
}

var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace (defaults to "solo" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "solo"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.isLeader = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "election",
			Name:      "is_leader",
			Help:      "Whether this instance currently holds the lease (1=leader, 0=not leader).",
		})

		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "election",
			Name:      "state_transitions_total",
			Help:      "Total leadership state transitions by source and target state.",
		}, []string{"from", "to"})

		p.leadershipAcquired = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "election",
			Name:      "leadership_acquired_total",
			Help:      "Total number of times this instance claimed the lease.",
		})

		p.storeOps = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "lease_store",
			Name:      "operations_total",
			Help:      "Total lease store operations by operation and result (success,failure).",
		}, []string{"op", "result"})

		p.storeLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "lease_store",
			Name:      "operation_duration_seconds",
			Help:      "Latency of lease store operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		}, []string{"op"})

		p.heartbeats = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "election",
			Name:      "heartbeats_total",
			Help:      "Total leader heartbeats by result (success,failure).",
		}, []string{"result"})

		p.gateOpen = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "gate",
			Name:      "open",
			Help:      "Communication gate status (1=open, 0=closed).",
		})

		p.gateChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "gate",
			Name:      "changes_total",
			Help:      "Total communication gate changes by direction (open,close).",
		}, []string{"direction"})

		p.reg.MustRegister(
			p.isLeader,
			p.stateTransitions,
			p.leadershipAcquired,
			p.storeOps,
			p.storeLatency,
			p.heartbeats,
			p.gateOpen,
			p.gateChanges,
		)
	})
}

// RecordStateTransition counts the transition and updates the leader gauge.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
	if to == types.StateLeader {
		p.isLeader.Set(1)
	} else {
		p.isLeader.Set(0)
	}
}

// RecordLeadershipChange counts a successful lease claim. The token is not
// used as a label because it changes on every restart.
func (p *PrometheusCollector) RecordLeadershipChange(_ string) {
	p.ensureRegistered()
	p.leadershipAcquired.Inc()
}

// RecordStoreOperation observes a lease store call.
func (p *PrometheusCollector) RecordStoreOperation(operation string, duration float64, success bool) {
	p.ensureRegistered()
	p.storeOps.WithLabelValues(operation, resultLabel(success)).Inc()
	p.storeLatency.WithLabelValues(operation).Observe(duration)
}

// RecordHeartbeat counts a heartbeat attempt.
func (p *PrometheusCollector) RecordHeartbeat(_ string, success bool) {
	p.ensureRegistered()
	p.heartbeats.WithLabelValues(resultLabel(success)).Inc()
}

// RecordGateChange updates the gate gauge and counts the change.
func (p *PrometheusCollector) RecordGateChange(open bool) {
	p.ensureRegistered()
	if open {
		p.gateOpen.Set(1)
		p.gateChanges.WithLabelValues("open").Inc()

		return
	}
	p.gateOpen.Set(0)
	p.gateChanges.WithLabelValues("close").Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}
