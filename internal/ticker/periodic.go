// Package ticker provides a periodic trigger that can be paused, resumed
// and cancelled.
package ticker

import (
	"sync"
	"time"
)

type status int

const (
	paused status = iota
	active
	cancelled
)

// Periodic fires on C every interval while active.
//
// A new Periodic starts paused. Resume restarts the full interval, so the
// first tick after Resume arrives one interval later. Cancel is terminal:
// Resume on a cancelled Periodic is a no-op.
//
// C returns the same channel for the lifetime of the Periodic, which lets
// an event loop select on it unconditionally. Paused or cancelled triggers
// never deliver on it.
type Periodic struct {
	mu       sync.Mutex
	interval time.Duration
	t        *time.Ticker
	status   status
}

// NewPeriodic creates a paused trigger. interval must be positive.
func NewPeriodic(interval time.Duration) *Periodic {
	t := time.NewTicker(interval)
	t.Stop()

	return &Periodic{interval: interval, t: t, status: paused}
}

// C returns the tick channel.
func (p *Periodic) C() <-chan time.Time {
	return p.t.C
}

// Resume activates the trigger. Resuming an active trigger is a no-op.
func (p *Periodic) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != paused {
		return
	}
	p.t.Reset(p.interval)
	p.status = active
}

// Pause suspends the trigger and discards a pending tick.
func (p *Periodic) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != active {
		return
	}
	p.stopLocked()
	p.status = paused
}

// Cancel stops the trigger permanently.
func (p *Periodic) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status == cancelled {
		return
	}
	p.stopLocked()
	p.status = cancelled
}

// Active reports whether the trigger is currently firing.
func (p *Periodic) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status == active
}

// Cancelled reports whether Cancel has been called.
func (p *Periodic) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status == cancelled
}

func (p *Periodic) stopLocked() {
	p.t.Stop()
	select {
	case <-p.t.C:
	default:
	}
}
