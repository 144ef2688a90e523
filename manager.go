package solo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/solo/internal/hooks"
	"github.com/arloliu/solo/internal/lease"
	"github.com/arloliu/solo/internal/logging"
	"github.com/arloliu/solo/internal/metrics"
	"github.com/arloliu/solo/internal/ticker"
)

// Manager elects a single active instance among identical replicas sharing
// one lease record.
//
// Manager is the main entry point of the solo library. It:
//   - Probes the lease while follower and claims it when free or expired
//   - Refreshes the lease heartbeat while leader
//   - Opens the communication gate on becoming leader and closes it on losing leadership
//   - Releases the lease on Stop or Release so another instance can take over at once
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Check ticks, heartbeat ticks and release run on one goroutine and never overlap
//
// Lifecycle:
//   - Create with NewManager()
//   - Call Start() when the host starts
//   - Call Release() from an administrative endpoint to hand over leadership
//   - Call Stop() when the host shuts down
type Manager struct {
	cfg   Config
	store LeaseStore
	gate  CommunicationGate

	hooks    Hooks
	metrics  MetricsCollector
	logger   Logger
	now      func() time.Time
	newToken func() string

	checkTrigger     *ticker.Periodic
	heartbeatTrigger *ticker.Periodic

	// identity is owned by the event loop; identityMu guards reads from other goroutines.
	identity   Identity
	identityMu sync.RWMutex

	state     atomic.Int32 // State
	releasing atomic.Bool

	cmds chan command

	// opCancel cancels the store call currently in flight, if any.
	opMu     sync.Mutex
	opCancel context.CancelFunc

	releaseDone chan struct{}
	releaseErr  error

	ctx     context.Context //nolint:containedctx // manager lifetime
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stopped bool
}

type commandKind int

const (
	cmdCheck commandKind = iota
	cmdHeartbeat
	cmdRelease
)

type command struct {
	kind commandKind
	done chan struct{}
}

// NewManager creates a new Manager.
//
// Returns a concrete *Manager struct following the "accept interfaces, return structs" principle.
//
// Parameters:
//   - cfg: Configuration; missing values are filled with defaults
//   - store: Lease store shared by every competing instance
//   - gate: Communication gate switched on while this instance is leader
//   - opts: Optional configuration (hooks, metrics, logger, clock)
//
// Returns:
//   - *Manager: Initialized manager instance
//   - error: ErrInvalidConfig, ErrLeaseStoreRequired or ErrGateRequired
//
// Example:
//
//	cfg := solo.DefaultConfig()
//	store, _ := solo.OpenNATSLeaseStore(ctx, js, &cfg)
//	g := gate.New()
//	mgr, err := solo.NewManager(&cfg, store, g, solo.WithLogger(logger))
func NewManager(cfg *Config, store LeaseStore, gate CommunicationGate, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if store == nil {
		return nil, ErrLeaseStoreRequired
	}
	if gate == nil {
		return nil, ErrGateRequired
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &managerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	clock := options.clock
	if clock == nil {
		clock = time.Now
	}

	tokenGen := options.token
	if tokenGen == nil {
		tokenGen = func() string { return uuid.NewString() }
	}

	m := &Manager{
		cfg:      *cfg,
		store:    store,
		gate:     gate,
		hooks:    hooks.Fill(options.hooks),
		metrics:  metricsCollector,
		logger:   loggerInstance,
		now:      clock,
		newToken: tokenGen,
		cmds:     make(chan command),

		releaseDone: make(chan struct{}),
	}
	m.state.Store(int32(StateFollower))

	return m, nil
}

// Start builds a fresh identity and begins competing for the lease.
//
// Both triggers start paused. Start runs one leader check before
// returning, so a lone instance is already leader when Start returns. A
// failing store does not fail Start: the check trigger keeps retrying.
//
// Parameters:
//   - ctx: Bounds the initial leader check
//
// Returns:
//   - error: ErrAlreadyStarted, ErrStopped, or ctx.Err() if the initial check was interrupted
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrStopped
	}
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.done = make(chan struct{})
	m.checkTrigger = ticker.NewPeriodic(m.cfg.LeaderCheckInterval)
	m.heartbeatTrigger = ticker.NewPeriodic(m.cfg.HeartbeatInterval)
	m.setIdentity(Identity{
		ID:            m.cfg.LeaseID,
		Token:         m.newToken(),
		LastHeartbeat: m.now(),
	})
	m.mu.Unlock()

	m.logger.Info("starting leader election",
		"lease_id", m.cfg.LeaseID,
		"token", m.Identity().Token,
	)

	go m.run()

	return m.send(ctx, cmdCheck)
}

// Stop releases the lease and stops the manager.
//
// Stop performs the release transition (close gate, cancel triggers,
// overwrite the lease with an empty holder) and waits for the release
// write, bounded by ctx and ShutdownTimeout.
//
// Returns:
//   - error: ErrNotStarted if never started or already stopped, an error
//     wrapping ErrReleaseFailed if the release write failed, or ctx.Err()
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.started || m.stopped {
		m.mu.Unlock()
		return ErrNotStarted
	}
	m.stopped = true
	m.mu.Unlock()

	var stopErr error
	if err := m.Release(); err != nil {
		// The event loop is gone, nothing left to release.
		m.logger.Error("failed to issue release", "error", err)
	} else {
		select {
		case <-m.releaseDone:
			stopErr = m.releaseErr
		case <-ctx.Done():
			stopErr = fmt.Errorf("waiting for lease release: %w", ctx.Err())
		}
	}

	m.cancel()

	waited := make(chan struct{})
	go func() {
		<-m.done
		m.wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		m.logger.Info("manager stopped", "lease_id", m.cfg.LeaseID)
	case <-ctx.Done():
		m.logger.Error("shutdown timeout exceeded, hooks may still be running")
		if stopErr == nil {
			stopErr = ctx.Err()
		}
	}

	return stopErr
}

// Release hands leadership over.
//
// It closes the gate, cancels both triggers and marks the manager
// released, then returns. The lease overwrite continues in the background,
// bounded by ShutdownTimeout. Any in-flight check or heartbeat is
// abandoned, including a gate transition it started. Calling Release again is a no-op.
//
// Returns:
//   - error: ErrNotStarted if Start was never called
func (m *Manager) Release() error {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	if !started {
		return ErrNotStarted
	}

	if !m.releasing.CompareAndSwap(false, true) {
		return nil
	}
	m.cancelInFlight()

	return m.send(context.Background(), cmdRelease)
}

// Released returns a channel closed once the release write finished,
// successfully or not. The channel is the same for the manager's whole
// lifetime; it stays open if the manager is never started.
func (m *Manager) Released() <-chan struct{} {
	return m.releaseDone
}

// CheckNow runs a leader check on the event loop and waits for it.
//
// Followers are probed by the check trigger anyway; CheckNow is useful for
// tests and for operators who want an immediate takeover after an outage.
func (m *Manager) CheckNow(ctx context.Context) error {
	if err := m.ensureRunning(); err != nil {
		return err
	}

	return m.send(ctx, cmdCheck)
}

// HeartbeatNow runs a heartbeat on the event loop and waits for it.
// It is a no-op unless the manager is leader.
func (m *Manager) HeartbeatNow(ctx context.Context) error {
	if err := m.ensureRunning(); err != nil {
		return err
	}

	return m.send(ctx, cmdHeartbeat)
}

// IsLeader reports whether this instance currently holds the lease.
func (m *Manager) IsLeader() bool {
	return m.State() == StateLeader
}

// State returns the current leadership state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Identity returns a copy of the local identity.
//
// Token is empty before Start. LastHeartbeat is the time of the last
// successful claim or heartbeat write.
func (m *Manager) Identity() Identity {
	m.identityMu.RLock()
	defer m.identityMu.RUnlock()

	return m.identity
}

// Config returns a copy of the effective configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// WaitState waits for the manager to reach the expected state within the timeout period.
//
// The returned channel receives exactly one value, nil on success or
// context.DeadlineExceeded on timeout, and is then closed.
//
// Example:
//
//	if err := <-mgr.WaitState(solo.StateLeader, 5*time.Second); err != nil {
//	    return fmt.Errorf("never became leader: %w", err)
//	}
func (m *Manager) WaitState(expectedState State, timeout time.Duration) <-chan error {
	ch := make(chan error, 1)

	go func() {
		defer close(ch)

		if m.State() == expectedState {
			ch <- nil
			return
		}

		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()

		timeoutTimer := time.NewTimer(timeout)
		defer timeoutTimer.Stop()

		for {
			select {
			case <-ticker.C:
				if m.State() == expectedState {
					ch <- nil
					return
				}
			case <-timeoutTimer.C:
				ch <- context.DeadlineExceeded
				return
			}
		}
	}()

	return ch
}

// run is the event loop. It is the only goroutine that touches the
// triggers, the gate and the lease on behalf of this manager.
func (m *Manager) run() {
	defer close(m.done)

	for {
		select {
		case <-m.ctx.Done():
			m.checkTrigger.Cancel()
			m.heartbeatTrigger.Cancel()

			return
		case <-m.checkTrigger.C():
			m.handleCheck()
		case <-m.heartbeatTrigger.C():
			m.handleHeartbeat()
		case cmd := <-m.cmds:
			switch cmd.kind {
			case cmdCheck:
				m.handleCheck()
			case cmdHeartbeat:
				m.handleHeartbeat()
			case cmdRelease:
				m.handleRelease()
			}
			close(cmd.done)
		}
	}
}

// send hands a command to the event loop and waits until it was processed.
func (m *Manager) send(ctx context.Context, kind commandKind) error {
	cmd := command{kind: kind, done: make(chan struct{})}

	select {
	case m.cmds <- cmd:
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-cmd.done:
		return nil
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) ensureRunning() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if m.stopped {
		return ErrStopped
	}

	return nil
}

// handleCheck claims the lease if it is free, expired or already ours, and
// otherwise settles into follower mode.
func (m *Manager) handleCheck() {
	if m.releasing.Load() {
		return
	}

	now := m.now()
	candidate := m.Identity()
	candidate.LastHeartbeat = now

	ctx, done := m.opContext()
	start := time.Now()
	record, err := m.store.GetAndUpdate(ctx, m.cfg.LeaseID, claimFunc(candidate, m.cfg.HeartbeatExpiration))
	done()
	m.metrics.RecordStoreOperation("check", time.Since(start).Seconds(), err == nil)

	switch {
	case err != nil && m.releasing.Load():
		m.logger.Debug("leader check abandoned by release", "lease_id", m.cfg.LeaseID)
	case err != nil && !errors.Is(err, ErrStoreConflict):
		m.logger.Warn("leader check failed", "lease_id", m.cfg.LeaseID, "error", err)
		m.reportError(fmt.Errorf("leader check: %w", err))
		if m.State() == StateFollower {
			// The first check runs with both triggers paused.
			m.checkTrigger.Resume()
		}
	case err == nil && record != nil:
		m.setHeartbeat(now)
		m.becomeLeader()
	default:
		if err != nil {
			m.logger.Debug("leader check lost the race", "lease_id", m.cfg.LeaseID, "error", err)
		}
		m.becomeFollower()
	}
}

// handleHeartbeat refreshes the lease while leader. If the lease turns out
// to be held by someone else, or by nobody, a leader check runs at once.
func (m *Manager) handleHeartbeat() {
	if m.releasing.Load() || m.State() != StateLeader {
		return
	}

	now := m.now()
	candidate := m.Identity()
	candidate.LastHeartbeat = now

	ctx, done := m.opContext()
	start := time.Now()
	record, err := m.store.Heartbeat(ctx, candidate)
	done()
	m.metrics.RecordStoreOperation("heartbeat", time.Since(start).Seconds(), err == nil)

	switch {
	case err != nil && m.releasing.Load():
		m.logger.Debug("heartbeat abandoned by release", "lease_id", m.cfg.LeaseID)
	case err != nil && !errors.Is(err, ErrStoreConflict):
		m.metrics.RecordHeartbeat(candidate.Token, false)
		m.logger.Warn("heartbeat failed", "lease_id", m.cfg.LeaseID, "error", err)
		m.reportError(fmt.Errorf("heartbeat: %w", err))
	case err == nil && record != nil:
		m.metrics.RecordHeartbeat(candidate.Token, true)
		m.setHeartbeat(now)
	default:
		m.metrics.RecordHeartbeat(candidate.Token, false)
		m.logger.Warn("lease no longer held by this instance, re-checking", "lease_id", m.cfg.LeaseID)
		m.handleCheck()
	}
}

// handleRelease is the terminal transition. Local cleanup happens here;
// the lease write runs in the background.
func (m *Manager) handleRelease() {
	from := m.State()
	if from == StateReleased {
		return
	}

	m.checkTrigger.Cancel()
	m.heartbeatTrigger.Cancel()

	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.ShutdownTimeout)
	if err := m.gate.Close(ctx); err != nil {
		m.logger.Warn("failed to close communication gate", "error", err)
		m.reportError(fmt.Errorf("close gate: %w", err))
	}
	cancel()

	m.transitionState(from, StateReleased)

	m.wg.Add(1)
	go m.writeRelease()
}

func (m *Manager) writeRelease() {
	defer m.wg.Done()
	defer close(m.releaseDone)

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	err := m.store.Set(ctx, lease.ReleasedRecord(m.cfg.LeaseID))
	m.metrics.RecordStoreOperation("release", time.Since(start).Seconds(), err == nil)

	if err != nil {
		m.releaseErr = fmt.Errorf("%w: %w", ErrReleaseFailed, err)
		m.logger.Error("failed to release lease", "lease_id", m.cfg.LeaseID, "error", err)
		m.reportError(m.releaseErr)

		return
	}

	m.logger.Info("lease released", "lease_id", m.cfg.LeaseID, "token", m.Identity().Token)
}

func (m *Manager) becomeLeader() {
	from := m.State()
	if from != StateLeader {
		m.transitionState(from, StateLeader)
		m.metrics.RecordLeadershipChange(m.Identity().Token)

		ctx, done := m.opContextTimeout(m.cfg.ShutdownTimeout)
		if err := m.gate.Open(ctx); err != nil && !m.releasing.Load() {
			m.logger.Warn("communication gate opened with errors", "error", err)
			m.reportError(fmt.Errorf("open gate: %w", err))
		}
		done()
	}

	m.heartbeatTrigger.Resume()
	m.checkTrigger.Pause()
}

func (m *Manager) becomeFollower() {
	from := m.State()
	if from == StateLeader {
		ctx, done := m.opContextTimeout(m.cfg.ShutdownTimeout)
		if err := m.gate.Close(ctx); err != nil && !m.releasing.Load() {
			m.logger.Warn("failed to close communication gate", "error", err)
			m.reportError(fmt.Errorf("close gate: %w", err))
		}
		done()

		m.transitionState(from, StateFollower)
	}

	m.heartbeatTrigger.Pause()
	m.checkTrigger.Resume()
}

// transitionState records a new state and triggers hooks.
func (m *Manager) transitionState(from, to State) {
	m.state.Store(int32(to)) //nolint:gosec // State values are controlled enum

	m.logger.Info("state transition",
		"from", from.String(),
		"to", to.String(),
		"lease_id", m.cfg.LeaseID,
		"token", m.Identity().Token,
	)

	m.metrics.RecordStateTransition(from, to)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.hooks.OnStateChanged(m.ctx, from, to); err != nil {
			m.logger.Error("state change hook error", "from", from, "to", to, "error", err)
		}
	}()
}

func (m *Manager) reportError(err error) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if hookErr := m.hooks.OnError(m.ctx, err); hookErr != nil {
			m.logger.Error("error hook failed", "error", hookErr)
		}
	}()
}

// opContext returns a context for one store call, cancellable by Release.
func (m *Manager) opContext() (context.Context, func()) {
	return m.opContextTimeout(m.cfg.OperationTimeout)
}

// opContextTimeout is opContext with an explicit bound. Gate transitions
// made by ticks use it so Release can abandon a hanging channel too.
func (m *Manager) opContextTimeout(timeout time.Duration) (context.Context, func()) {
	ctx, cancel := context.WithTimeout(m.ctx, timeout)

	m.opMu.Lock()
	m.opCancel = cancel
	m.opMu.Unlock()

	if m.releasing.Load() {
		cancel()
	}

	return ctx, func() {
		m.opMu.Lock()
		m.opCancel = nil
		m.opMu.Unlock()
		cancel()
	}
}

func (m *Manager) cancelInFlight() {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.opCancel != nil {
		m.opCancel()
	}
}

func (m *Manager) setIdentity(id Identity) {
	m.identityMu.Lock()
	m.identity = id
	m.identityMu.Unlock()
}

func (m *Manager) setHeartbeat(t time.Time) {
	m.identityMu.Lock()
	m.identity.LastHeartbeat = t
	m.identityMu.Unlock()
}
