package subscription

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/solo/internal/logging"
	"github.com/arloliu/solo/types"
)

// Producer is the subset of jetstream.JetStream used for publishing.
type Producer interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// GatedPublisher publishes to JetStream only while production is enabled.
//
// It starts disabled. Feed it production events with Watch (or SetEnabled)
// and every Publish made while disabled fails fast with
// types.ErrProductionDisabled instead of reaching the server.
type GatedPublisher struct {
	producer   Producer
	prefix     string
	logger     types.Logger
	enabled    atomic.Bool
	published  atomic.Uint64
	suppressed atomic.Uint64
}

// NewGatedPublisher creates a disabled publisher.
//
// Parameters:
//   - producer: Usually a jetstream.JetStream
//   - prefix: Optional subject prefix, joined to subjects with "."
//   - logger: Optional logger (nil for no-op)
func NewGatedPublisher(producer Producer, prefix string, logger types.Logger) *GatedPublisher {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &GatedPublisher{producer: producer, prefix: prefix, logger: logger}
}

// Watch applies production events until events is closed or ctx ends.
//
// Example:
//
//	events, unsubscribe := g.Subscribe()
//	defer unsubscribe()
//	go pub.Watch(ctx, events)
func (p *GatedPublisher) Watch(ctx context.Context, events <-chan types.ProductionEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				p.SetEnabled(false)
				return
			}
			p.SetEnabled(ev.Enabled)
		}
	}
}

// SetEnabled switches production on or off.
func (p *GatedPublisher) SetEnabled(enabled bool) {
	if p.enabled.Swap(enabled) != enabled {
		p.logger.Debug("production toggled", "enabled", enabled)
	}
}

// Enabled reports whether Publish currently reaches the server.
func (p *GatedPublisher) Enabled() bool { return p.enabled.Load() }

// Publish sends payload to subject when production is enabled.
//
// Returns:
//   - *jetstream.PubAck: Server acknowledgment
//   - error: types.ErrProductionDisabled while disabled, or the publish error
func (p *GatedPublisher) Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if !p.enabled.Load() {
		p.suppressed.Add(1)
		return nil, fmt.Errorf("%w: subject %s", types.ErrProductionDisabled, p.subject(subject))
	}

	ack, err := p.producer.Publish(ctx, p.subject(subject), payload, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to publish to %s: %w", p.subject(subject), err)
	}
	p.published.Add(1)

	return ack, nil
}

// Published returns the number of successful publishes.
func (p *GatedPublisher) Published() uint64 { return p.published.Load() }

// Suppressed returns the number of publishes refused while disabled.
func (p *GatedPublisher) Suppressed() uint64 { return p.suppressed.Load() }

func (p *GatedPublisher) subject(s string) string {
	if p.prefix == "" {
		return s
	}

	return p.prefix + "." + s
}
