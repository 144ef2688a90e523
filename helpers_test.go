package solo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/solo/gate"
	"github.com/arloliu/solo/internal/lease"
	"github.com/arloliu/solo/internal/logging"
	solotest "github.com/arloliu/solo/testing"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// manualConfig disables the periodic triggers in practice so tests drive
// every tick through CheckNow and HeartbeatNow.
func manualConfig() Config {
	return Config{
		LeaseID:             "leader",
		LeaderCheckInterval: time.Hour,
		HeartbeatInterval:   time.Hour,
		HeartbeatExpiration: 10 * time.Hour,
		OperationTimeout:    time.Second,
		ShutdownTimeout:     time.Second,
	}
}

type transition struct {
	from, to State
}

type recorder struct {
	mu          sync.Mutex
	transitions []transition
	errors      []error
}

func (r *recorder) hooks() *Hooks {
	return &Hooks{
		OnStateChanged: func(_ context.Context, from, to State) error {
			r.mu.Lock()
			r.transitions = append(r.transitions, transition{from, to})
			r.mu.Unlock()

			return nil
		},
		OnError: func(_ context.Context, err error) error {
			r.mu.Lock()
			r.errors = append(r.errors, err)
			r.mu.Unlock()

			return nil
		},
	}
}

func (r *recorder) snapshot() ([]transition, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]transition(nil), r.transitions...), append([]error(nil), r.errors...)
}

type instance struct {
	mgr  *Manager
	gate *gate.Gate
	rec  *recorder
}

func newInstance(t *testing.T, store LeaseStore, clock *solotest.FakeClock, token string, opts ...Option) *instance {
	t.Helper()

	return newInstanceWithConfig(t, manualConfig(), store, clock, token, opts...)
}

func newInstanceWithConfig(t *testing.T, cfg Config, store LeaseStore, clock *solotest.FakeClock, token string, opts ...Option) *instance {
	t.Helper()

	g := gate.New()
	rec := &recorder{}

	all := append([]Option{
		WithClock(clock.Now),
		WithTokenGenerator(func() string { return token }),
		WithLogger(logging.NewTest(t)),
		WithHooks(rec.hooks()),
	}, opts...)

	mgr, err := NewManager(&cfg, store, g, all...)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = mgr.Stop(ctx)
	})

	return &instance{mgr: mgr, gate: g, rec: rec}
}

// blockingStore blocks GetAndUpdate until its context ends.
type blockingStore struct {
	*lease.MemoryStore
	entered chan struct{}
	once    sync.Once
}

func newBlockingStore() *blockingStore {
	return &blockingStore{MemoryStore: lease.NewMemoryStore(), entered: make(chan struct{})}
}

func (s *blockingStore) GetAndUpdate(ctx context.Context, _ string, _ UpdateFunc) (*LeaseRecord, error) {
	s.once.Do(func() { close(s.entered) })
	<-ctx.Done()

	return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, ctx.Err())
}

type recordingMetrics struct {
	mu          sync.Mutex
	transitions int
	acquired    []string
	ops         map[string]int
	heartbeats  map[bool]int
	gate        []bool
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{ops: map[string]int{}, heartbeats: map[bool]int{}}
}

func (m *recordingMetrics) RecordStateTransition(_, _ State) {
	m.mu.Lock()
	m.transitions++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordLeadershipChange(token string) {
	m.mu.Lock()
	m.acquired = append(m.acquired, token)
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordStoreOperation(op string, _ float64, success bool) {
	m.mu.Lock()
	m.ops[fmt.Sprintf("%s/%t", op, success)]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordHeartbeat(_ string, success bool) {
	m.mu.Lock()
	m.heartbeats[success]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordGateChange(open bool) {
	m.mu.Lock()
	m.gate = append(m.gate, open)
	m.mu.Unlock()
}

// hangingChannel blocks in Resume until its context ends.
type hangingChannel struct {
	entered chan struct{}
	once    sync.Once
}

func newHangingChannel() *hangingChannel {
	return &hangingChannel{entered: make(chan struct{})}
}

func (c *hangingChannel) Name() string { return "hanging" }

func (c *hangingChannel) Resume(ctx context.Context) error {
	c.once.Do(func() { close(c.entered) })
	<-ctx.Done()

	return ctx.Err()
}

func (c *hangingChannel) Pause(context.Context) error { return nil }
