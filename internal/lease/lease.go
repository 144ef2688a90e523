package lease

import "github.com/arloliu/solo/types"

// HeartbeatFunc returns the update that refreshes the lease held by identity.
//
// The update declines to write (returns nil) when the stored record is absent
// or names another token, so a stale leader can never overwrite a lease it
// lost.
func HeartbeatFunc(identity types.Identity) types.UpdateFunc {
	return func(current *types.LeaseRecord) *types.LeaseRecord {
		if current == nil || current.Token != identity.Token {
			return nil
		}

		next := identity.Record()

		return &next
	}
}

// ReleasedRecord returns the record written on release: same id, no holder,
// no heartbeat.
func ReleasedRecord(id string) types.LeaseRecord {
	return types.LeaseRecord{ID: id}
}
