package metrics

import "github.com/arloliu/solo/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Used as the Manager default and in tests.
type NopMetrics struct{}

var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	mgr, _ := solo.NewManager(&cfg, store, g, solo.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ManagerMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.State) {
	// No-op
}

// RecordLeadershipChange discards the leadership change metric.
func (n *NopMetrics) RecordLeadershipChange(_ /* token */ string) {
	// No-op
}

// StoreMetrics implementation

// RecordStoreOperation discards the store operation metric.
func (n *NopMetrics) RecordStoreOperation(_ /* operation */ string, _ /* duration */ float64, _ /* success */ bool) {
	// No-op
}

// HeartbeatMetrics implementation

// RecordHeartbeat discards the heartbeat metric.
func (n *NopMetrics) RecordHeartbeat(_ /* token */ string, _ /* success */ bool) {
	// No-op
}

// GateMetrics implementation

// RecordGateChange discards the gate change metric.
func (n *NopMetrics) RecordGateChange(_ /* open */ bool) {
	// No-op
}
