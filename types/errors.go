package types

import (
	"errors"
	"strings"
)

// Sentinel errors for the solo library.
//
// Components wrap external errors with context using fmt.Errorf("%s: %w", msg, err)
// and callers match them with errors.Is.

// Manager errors - Public API errors returned by the Manager.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLeaseStoreRequired is returned when the lease store is nil.
	ErrLeaseStoreRequired = errors.New("lease store is required")

	// ErrGateRequired is returned when the communication gate is nil.
	ErrGateRequired = errors.New("communication gate is required")

	// ErrAlreadyStarted is returned when Start is called on a running manager.
	ErrAlreadyStarted = errors.New("manager already started")

	// ErrNotStarted is returned when an operation requires a started manager.
	ErrNotStarted = errors.New("manager not started")

	// ErrStopped is returned when an operation is attempted after Stop.
	ErrStopped = errors.New("manager stopped")
)

// Lease store errors - Never fatal; absorbed by the manager and retried on the next tick.
var (
	// ErrStoreUnavailable indicates a transient failure reaching the lease store.
	ErrStoreUnavailable = errors.New("lease store unavailable")

	// ErrStoreConflict indicates a concurrent writer won the compare-and-set.
	ErrStoreConflict = errors.New("lease store conflict")

	// ErrReleaseFailed indicates the release write did not reach the store.
	// The lease stays stale until its heartbeat expires.
	ErrReleaseFailed = errors.New("lease release failed")

	// ErrInvalidLease is returned when a stored record cannot be decoded or has no ID.
	ErrInvalidLease = errors.New("invalid lease record")
)

// Gate errors.
var (
	// ErrChannelRegistered is returned when an inbound channel name is registered twice.
	ErrChannelRegistered = errors.New("inbound channel already registered")

	// ErrProductionDisabled is returned by gated producers while the gate is closed.
	ErrProductionDisabled = errors.New("production disabled: instance is not the leader")
)

// IsTransient reports whether err is a store error that the next tick may resolve.
//
// Besides the sentinel errors it recognizes wrapped timeouts by message, which
// is how some clients surface deadline failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrStoreConflict) {
		return true
	}

	return strings.Contains(err.Error(), "timeout")
}
