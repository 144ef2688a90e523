package types

// State represents the leadership state of a single instance.
//
// Transitions:
//
//	StateFollower → StateLeader   (leader check claimed the lease)
//	StateLeader   → StateFollower (leader check found another live holder)
//	any           → StateReleased (shutdown or explicit release)
//
// StateReleased is terminal for the lifetime of a Manager.
type State int

const (
	// StateFollower is the initial state. Communication is disabled and the
	// leader-check trigger probes the lease.
	StateFollower State = iota

	// StateLeader indicates this instance holds the lease. Communication is
	// enabled and the heartbeat trigger refreshes the lease.
	StateLeader

	// StateReleased indicates the lease was released and both triggers are cancelled.
	StateReleased
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateFollower:
		return "Follower"
	case StateLeader:
		return "Leader"
	case StateReleased:
		return "Released"
	default:
		return "Unknown"
	}
}
