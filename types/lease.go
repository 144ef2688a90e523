package types

import (
	"context"
	"time"
)

// LeaseRecord is the shared, persisted unit of truth for leadership.
//
// One record exists per deployment, keyed by ID. An empty Token means the
// lease is unheld, and a nil LastHeartbeat means the holder never confirmed
// liveness. Released leases keep the record with both fields cleared.
type LeaseRecord struct {
	// ID is the fixed logical name of the lease.
	ID string `json:"id"`

	// Token identifies the instance believed to hold the lease.
	Token string `json:"token,omitempty"`

	// LastHeartbeat is the time of the most recent liveness confirmation by the holder.
	LastHeartbeat *time.Time `json:"lastHeartbeat,omitempty"`
}

// Held reports whether the record names a holder.
func (r *LeaseRecord) Held() bool {
	return r != nil && r.Token != ""
}

// Clone returns a deep copy of the record.
func (r *LeaseRecord) Clone() *LeaseRecord {
	if r == nil {
		return nil
	}

	c := &LeaseRecord{ID: r.ID, Token: r.Token}
	if r.LastHeartbeat != nil {
		hb := *r.LastHeartbeat
		c.LastHeartbeat = &hb
	}

	return c
}

// Identity is the process-local identity competing for the lease.
//
// Token is generated once per process lifetime and never changes. Only the
// Manager's event loop mutates LastHeartbeat.
type Identity struct {
	ID            string
	Token         string
	LastHeartbeat time.Time
}

// Record returns the lease record that claims the lease for this identity.
func (i Identity) Record() LeaseRecord {
	hb := i.LastHeartbeat

	return LeaseRecord{ID: i.ID, Token: i.Token, LastHeartbeat: &hb}
}

// UpdateFunc decides the next value of a lease inside an atomic read-modify-write.
//
// It receives the current record (nil when none exists) and returns the record
// to persist, or nil to leave the store untouched. Implementations must be
// pure: a store may invoke them more than once.
type UpdateFunc func(current *LeaseRecord) *LeaseRecord

// LeaseStore provides atomic access to lease records.
//
// Implementations must offer per-key linearizable compare-and-set semantics.
// The NATS JetStream KV store and an in-memory store ship with solo; others
// (etcd, SQL, Redis) can be plugged in through this interface.
type LeaseStore interface {
	// GetAndUpdate atomically reads the record for id, applies fn and persists
	// the result when it is non-nil.
	//
	// Returns:
	//   - *LeaseRecord: The persisted record, or nil when fn declined to write
	//   - error: ErrStoreUnavailable for transient failures, ErrStoreConflict
	//     when a concurrent writer won the compare-and-set
	GetAndUpdate(ctx context.Context, id string, fn UpdateFunc) (*LeaseRecord, error)

	// Set unconditionally overwrites the record. Only used for release.
	Set(ctx context.Context, record LeaseRecord) error

	// Heartbeat refreshes LastHeartbeat of the lease held by identity.
	//
	// Returns:
	//   - *LeaseRecord: The persisted record, or nil when the lease is no longer
	//     held by identity.Token
	//   - error: Same classification as GetAndUpdate
	Heartbeat(ctx context.Context, identity Identity) (*LeaseRecord, error)
}
