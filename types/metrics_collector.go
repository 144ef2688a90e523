package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and thread-safe. The interface is
// composed of small domain-focused interfaces so that components can depend
// only on what they record.
type MetricsCollector interface {
	ManagerMetrics
	StoreMetrics
	HeartbeatMetrics
	GateMetrics
}

// ManagerMetrics defines metrics for leadership transitions.
type ManagerMetrics interface {
	// RecordStateTransition records a leadership state transition.
	RecordStateTransition(from, to State)

	// RecordLeadershipChange records that this instance acquired the lease with the given token.
	RecordLeadershipChange(token string)
}

// StoreMetrics defines metrics for lease store operations.
type StoreMetrics interface {
	// RecordStoreOperation records a lease store call.
	//
	// Parameters:
	//   - operation: Operation type ("check", "heartbeat", "release")
	//   - duration: Time taken in seconds
	//   - success: false when the store returned an error
	RecordStoreOperation(operation string, duration float64, success bool)
}

// HeartbeatMetrics defines metrics for leader heartbeats.
type HeartbeatMetrics interface {
	// RecordHeartbeat records a heartbeat attempt by the current leader.
	RecordHeartbeat(token string, success bool)
}

// GateMetrics defines metrics for the communication gate.
type GateMetrics interface {
	// RecordGateChange records the gate opening (true) or closing (false).
	RecordGateChange(open bool)
}
