package solo

import "github.com/arloliu/solo/types"

// Re-export types from the types package.
//
// Internal packages depend on types rather than on the root package, which
// avoids import cycles while still offering solo.State, solo.Logger and the
// like to users.
type (
	State             = types.State
	LeaseRecord       = types.LeaseRecord
	Identity          = types.Identity
	UpdateFunc        = types.UpdateFunc
	ProductionEvent   = types.ProductionEvent
	LeaseStore        = types.LeaseStore
	InboundChannel    = types.InboundChannel
	CommunicationGate = types.CommunicationGate
	MetricsCollector  = types.MetricsCollector
	Logger            = types.Logger
	Hooks             = types.Hooks
)

// Re-export State constants.
const (
	StateFollower = types.StateFollower
	StateLeader   = types.StateLeader
	StateReleased = types.StateReleased
)
