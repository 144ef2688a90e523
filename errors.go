package solo

import "github.com/arloliu/solo/types"

// Sentinel errors returned by the Manager and lease stores.
var (
	ErrInvalidConfig      = types.ErrInvalidConfig
	ErrLeaseStoreRequired = types.ErrLeaseStoreRequired
	ErrGateRequired       = types.ErrGateRequired
	ErrAlreadyStarted     = types.ErrAlreadyStarted
	ErrNotStarted         = types.ErrNotStarted
	ErrStopped            = types.ErrStopped

	ErrStoreUnavailable = types.ErrStoreUnavailable
	ErrStoreConflict    = types.ErrStoreConflict
	ErrReleaseFailed    = types.ErrReleaseFailed
	ErrInvalidLease     = types.ErrInvalidLease

	ErrChannelRegistered  = types.ErrChannelRegistered
	ErrProductionDisabled = types.ErrProductionDisabled
)
