package ticker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const interval = 10 * time.Millisecond

func requireNoTick(t *testing.T, p *Periodic, wait time.Duration) {
	t.Helper()

	select {
	case <-p.C():
		t.Fatal("unexpected tick")
	case <-time.After(wait):
	}
}

func requireTick(t *testing.T, p *Periodic) {
	t.Helper()

	select {
	case <-p.C():
	case <-time.After(time.Second):
		t.Fatal("expected tick")
	}
}

func TestPeriodic_StartsPaused(t *testing.T) {
	p := NewPeriodic(interval)

	require.False(t, p.Active())
	require.False(t, p.Cancelled())
	requireNoTick(t, p, 5*interval)
}

func TestPeriodic_ResumeAndPause(t *testing.T) {
	p := NewPeriodic(interval)

	p.Resume()
	require.True(t, p.Active())
	requireTick(t, p)
	requireTick(t, p)

	p.Pause()
	require.False(t, p.Active())
	requireNoTick(t, p, 5*interval)

	p.Resume()
	requireTick(t, p)
}

func TestPeriodic_PauseDiscardsPendingTick(t *testing.T) {
	p := NewPeriodic(interval)

	p.Resume()
	time.Sleep(3 * interval)
	p.Pause()

	requireNoTick(t, p, 3*interval)
}

func TestPeriodic_CancelIsTerminal(t *testing.T) {
	p := NewPeriodic(interval)

	p.Resume()
	p.Cancel()
	require.True(t, p.Cancelled())
	require.False(t, p.Active())

	p.Resume()
	require.False(t, p.Active())
	requireNoTick(t, p, 5*interval)

	// Idempotent.
	p.Cancel()
	p.Pause()
	require.True(t, p.Cancelled())
}

func TestPeriodic_IdempotentTransitions(t *testing.T) {
	p := NewPeriodic(interval)

	p.Pause()
	require.False(t, p.Active())

	p.Resume()
	p.Resume()
	require.True(t, p.Active())
	requireTick(t, p)
}
