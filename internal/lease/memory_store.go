package lease

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/solo/types"
)

// MemoryStore implements types.LeaseStore in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*types.LeaseRecord
	failErr error
	writes  int
}

var _ types.LeaseStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory lease store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*types.LeaseRecord)}
}

// GetAndUpdate applies fn to the current record under the store lock.
func (s *MemoryStore) GetAndUpdate(ctx context.Context, id string, fn types.UpdateFunc) (*types.LeaseRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty lease id", types.ErrInvalidLease)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(ctx); err != nil {
		return nil, err
	}

	next := fn(s.records[id].Clone())
	if next == nil {
		return nil, nil //nolint:nilnil
	}
	next.ID = id
	s.records[id] = next.Clone()
	s.writes++

	return next, nil
}

// Set overwrites the record.
func (s *MemoryStore) Set(ctx context.Context, record types.LeaseRecord) error {
	if record.ID == "" {
		return fmt.Errorf("%w: empty lease id", types.ErrInvalidLease)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(ctx); err != nil {
		return err
	}

	s.records[record.ID] = record.Clone()
	s.writes++

	return nil
}

// Heartbeat refreshes the lease while identity still holds it.
func (s *MemoryStore) Heartbeat(ctx context.Context, identity types.Identity) (*types.LeaseRecord, error) {
	return s.GetAndUpdate(ctx, identity.ID, HeartbeatFunc(identity))
}

// Get returns a copy of the stored record, or nil. It ignores injected failures.
func (s *MemoryStore) Get(id string) *types.LeaseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.records[id].Clone()
}

// Put stores record directly, bypassing injected failures. Tests use it to
// simulate another instance writing the lease.
func (s *MemoryStore) Put(record types.LeaseRecord) {
	s.mu.Lock()
	s.records[record.ID] = record.Clone()
	s.mu.Unlock()
}

// Writes returns how many successful writes the store accepted.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writes
}

// SetFailure makes every subsequent operation fail with err until it is
// called again with nil. err is wrapped in types.ErrStoreUnavailable unless
// it already matches a store sentinel.
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	s.failErr = err
	s.mu.Unlock()
}

func (s *MemoryStore) checkLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrStoreUnavailable, err)
	}
	if s.failErr == nil {
		return nil
	}
	if errors.Is(s.failErr, types.ErrStoreUnavailable) || errors.Is(s.failErr, types.ErrStoreConflict) {
		return s.failErr
	}

	return fmt.Errorf("%w: %w", types.ErrStoreUnavailable, s.failErr)
}
