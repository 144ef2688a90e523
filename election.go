package solo

import "time"

// claimFunc returns the update run by a leader check.
//
// The lease is claimed, that is overwritten with candidate (whose
// LastHeartbeat is the check time), when any of these hold:
//   - no record exists
//   - the record names no holder
//   - the record already names candidate's token
//   - the holder never confirmed a heartbeat
//   - the last heartbeat is older than candidate.LastHeartbeat - expiration
//
// Otherwise the update declines to write and the caller stays follower.
func claimFunc(candidate Identity, expiration time.Duration) UpdateFunc {
	return func(current *LeaseRecord) *LeaseRecord {
		if !claimable(current, candidate, expiration) {
			return nil
		}

		next := candidate.Record()

		return &next
	}
}

func claimable(current *LeaseRecord, candidate Identity, expiration time.Duration) bool {
	switch {
	case current == nil, current.Token == "":
		return true
	case current.Token == candidate.Token:
		return true
	case current.LastHeartbeat == nil:
		return true
	default:
		return current.LastHeartbeat.Before(candidate.LastHeartbeat.Add(-expiration))
	}
}
