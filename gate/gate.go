package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/solo/types"
)

// Gate implements types.CommunicationGate.
//
// Open and Close are serialized. Subscribe and IsOpen never block on them.
type Gate struct {
	opts options

	mu       sync.Mutex
	channels []types.InboundChannel
	names    map[string]struct{}

	open        atomic.Bool
	subscribers *xsync.Map[uint64, *subscriber]
	nextSubID   atomic.Uint64
}

var _ types.CommunicationGate = (*Gate)(nil)

// New creates a closed gate with no registered channels.
func New(opts ...Option) *Gate {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Gate{
		opts:        o,
		names:       make(map[string]struct{}),
		subscribers: xsync.NewMap[uint64, *subscriber](),
	}
}

// Register adds an inbound channel. Channels registered while the gate is
// open are resumed immediately.
//
// Returns:
//   - error: ErrChannelRegistered if the name is taken, or the resume error
func (g *Gate) Register(ctx context.Context, ch types.InboundChannel) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.names[ch.Name()]; ok {
		return fmt.Errorf("%w: %s", types.ErrChannelRegistered, ch.Name())
	}
	g.names[ch.Name()] = struct{}{}
	g.channels = append(g.channels, ch)

	if g.open.Load() {
		return g.resume(ctx, ch)
	}

	return nil
}

// Channels returns the names of registered inbound channels in registration order.
func (g *Gate) Channels() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, 0, len(g.channels))
	for _, ch := range g.channels {
		names = append(names, ch.Name())
	}

	return names
}

// Subscribe returns a channel of production events and a function that
// cancels the subscription and closes the channel.
//
// The current state is delivered first, so a late subscriber does not have
// to wait for the next transition.
func (g *Gate) Subscribe() (<-chan types.ProductionEvent, func()) {
	id := g.nextSubID.Add(1)
	sub := &subscriber{ch: make(chan types.ProductionEvent, g.opts.bufferSize)}
	g.subscribers.Store(id, sub)

	sub.send(types.ProductionEvent{Enabled: g.open.Load(), At: g.opts.clock()})

	var once sync.Once

	return sub.ch, func() {
		once.Do(func() {
			if s, ok := g.subscribers.LoadAndDelete(id); ok {
				s.close()
			}
		})
	}
}

// Open resumes every inbound channel, then announces production enabled.
//
// Production is announced even when some channels fail to resume: the
// caller is the leader either way, and the returned error lists every
// channel that stayed paused.
func (g *Gate) Open(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error
	for _, ch := range g.channels {
		if err := g.resume(ctx, ch); err != nil {
			errs = append(errs, err)
		}
	}

	if !g.open.Swap(true) {
		g.opts.metrics.RecordGateChange(true)
	}
	g.publish(true)
	g.opts.logger.Info("communication gate opened", "channels", len(g.channels))

	return errors.Join(errs...)
}

// Close announces production disabled, then pauses every inbound channel.
func (g *Gate) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.open.Swap(false) {
		g.opts.metrics.RecordGateChange(false)
	}
	g.publish(false)

	var errs []error
	for _, ch := range g.channels {
		if err := ch.Pause(ctx); err != nil {
			g.opts.logger.Warn("failed to pause inbound channel", "channel", ch.Name(), "error", err)
			errs = append(errs, fmt.Errorf("pause %s: %w", ch.Name(), err))
		}
	}
	g.opts.logger.Info("communication gate closed", "channels", len(g.channels))

	return errors.Join(errs...)
}

// IsOpen reports whether production is currently enabled.
func (g *Gate) IsOpen() bool {
	return g.open.Load()
}

// Shutdown closes every subscriber channel. The gate must not be used afterwards.
func (g *Gate) Shutdown() {
	g.subscribers.Range(func(id uint64, sub *subscriber) bool {
		g.subscribers.Delete(id)
		sub.close()

		return true
	})
}

func (g *Gate) resume(ctx context.Context, ch types.InboundChannel) error {
	err := backoffRetry(ctx, g.opts, ch)
	if err != nil {
		g.opts.logger.Error("failed to resume inbound channel", "channel", ch.Name(), "error", err)
		return fmt.Errorf("resume %s: %w", ch.Name(), err)
	}

	return nil
}

func (g *Gate) publish(enabled bool) {
	ev := types.ProductionEvent{Enabled: enabled, At: g.opts.clock()}
	g.subscribers.Range(func(_ uint64, sub *subscriber) bool {
		sub.send(ev)
		return true
	})
}
