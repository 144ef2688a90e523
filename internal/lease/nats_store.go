package lease

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/solo/internal/natsutil"
	"github.com/arloliu/solo/types"
)

// NATSStore implements types.LeaseStore on a JetStream KV bucket.
//
// It is safe for concurrent use. Atomicity is provided by the bucket, so
// several processes may share the same bucket and key.
type NATSStore struct {
	kv jetstream.KeyValue
}

var _ types.LeaseStore = (*NATSStore)(nil)

// NewNATSStore creates a lease store backed by kv.
//
// Example:
//
//	kv, _ := kvutil.EnsureBucket(ctx, js, kvutil.LeaseBucketConfig("solo-lease", 1), 0)
//	store := lease.NewNATSStore(kv)
func NewNATSStore(kv jetstream.KeyValue) *NATSStore {
	return &NATSStore{kv: kv}
}

// GetAndUpdate reads the record under id, applies fn and writes the result
// with a revision check.
//
// A record that cannot be decoded is passed to fn as nil, and a non-nil
// result replaces it. This lets a corrupted lease heal on the next claim.
func (s *NATSStore) GetAndUpdate(ctx context.Context, id string, fn types.UpdateFunc) (*types.LeaseRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty lease id", types.ErrInvalidLease)
	}

	current, rev, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	next := fn(current)
	if next == nil {
		return nil, nil //nolint:nilnil
	}
	next.ID = id

	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidLease, err)
	}

	if rev == 0 {
		if _, err := s.kv.Create(ctx, id, data); err != nil {
			return nil, natsutil.Classify("create lease", err)
		}
	} else {
		if _, err := s.kv.Update(ctx, id, data, rev); err != nil {
			return nil, natsutil.Classify("update lease", err)
		}
	}

	return next, nil
}

// Set overwrites the record without a revision check.
func (s *NATSStore) Set(ctx context.Context, record types.LeaseRecord) error {
	if record.ID == "" {
		return fmt.Errorf("%w: empty lease id", types.ErrInvalidLease)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidLease, err)
	}

	if _, err := s.kv.Put(ctx, record.ID, data); err != nil {
		return natsutil.Classify("put lease", err)
	}

	return nil
}

// Heartbeat refreshes the lease while identity still holds it.
func (s *NATSStore) Heartbeat(ctx context.Context, identity types.Identity) (*types.LeaseRecord, error) {
	return s.GetAndUpdate(ctx, identity.ID, HeartbeatFunc(identity))
}

// Get returns the stored record, or nil when none exists.
func (s *NATSStore) Get(ctx context.Context, id string) (*types.LeaseRecord, error) {
	record, _, err := s.load(ctx, id)

	return record, err
}

// load returns the decoded record and its revision. Revision 0 means no
// live entry exists for id.
func (s *NATSStore) load(ctx context.Context, id string) (*types.LeaseRecord, uint64, error) {
	entry, err := s.kv.Get(ctx, id)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, natsutil.Classify("get lease", err)
	}

	var record types.LeaseRecord
	if err := json.Unmarshal(entry.Value(), &record); err != nil {
		return nil, entry.Revision(), nil
	}

	return &record, entry.Revision(), nil
}
