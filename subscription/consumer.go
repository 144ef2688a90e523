package subscription

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/solo/types"
)

// GatedConsumer is a durable JetStream push-style consumer that can be
// paused and resumed by the communication gate.
//
// Resume creates (or updates) the durable consumer and starts Consume.
// Pause drains the running ConsumeContext, waiting for in-flight handlers
// up to DrainTimeout. The durable consumer itself survives a pause, so no
// message is lost while this instance is a follower.
type GatedConsumer struct {
	js      jetstream.JetStream
	cfg     ConsumerConfig
	handler MessageHandler
	logger  types.Logger

	mu      sync.Mutex
	cc      jetstream.ConsumeContext
	cancel  context.CancelFunc
	handled atomic.Uint64
	failed  atomic.Uint64
}

var _ types.InboundChannel = (*GatedConsumer)(nil)

// NewGatedConsumer creates a paused consumer.
//
// Parameters:
//   - js: JetStream context
//   - cfg: Consumer configuration (StreamName and Durable are required)
//   - handler: Message handler
//
// Returns:
//   - *GatedConsumer: Consumer ready to be registered with a gate
//   - error: Configuration error
//
// Example:
//
//	c, err := subscription.NewGatedConsumer(js, subscription.ConsumerConfig{
//	    StreamName:     "JOBS",
//	    Durable:        "job-service",
//	    FilterSubjects: []string{"jobs.>"},
//	}, handler)
//	_ = g.Register(ctx, c)
func NewGatedConsumer(js jetstream.JetStream, cfg ConsumerConfig, handler MessageHandler) (*GatedConsumer, error) {
	if cfg.StreamName == "" {
		return nil, ErrStreamRequired
	}
	if cfg.Durable == "" {
		return nil, ErrDurableRequired
	}
	if handler == nil {
		return nil, ErrHandlerRequired
	}

	cfg.applyDefaults()

	return &GatedConsumer{
		js:      js,
		cfg:     cfg,
		handler: handler,
		logger:  cfg.Logger,
	}, nil
}

// Name returns "stream/durable".
func (c *GatedConsumer) Name() string {
	return c.cfg.StreamName + "/" + c.cfg.Durable
}

// Resume starts delivering messages. Resuming a running consumer is a no-op.
func (c *GatedConsumer) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cc != nil {
		return nil
	}

	consumer, err := c.js.CreateOrUpdateConsumer(ctx, c.cfg.StreamName, c.cfg.consumerConfig())
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", c.Name(), err)
	}

	// Handlers outlive the Resume call, so they get their own context.
	handlerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	cc, err := consumer.Consume(
		func(msg jetstream.Msg) { c.handle(handlerCtx, msg) },
		jetstream.ConsumeErrHandler(func(_ jetstream.ConsumeContext, err error) {
			c.logger.Warn("consume error", "consumer", c.Name(), "error", err)
		}),
	)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start consuming %s: %w", c.Name(), err)
	}

	c.cc = cc
	c.cancel = cancel
	c.logger.Info("consumer resumed", "consumer", c.Name())

	return nil
}

// Pause stops delivering messages. Pausing a paused consumer is a no-op.
//
// Pause waits for in-flight handlers until ctx ends or DrainTimeout elapses,
// then cancels their context.
func (c *GatedConsumer) Pause(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cc == nil {
		return nil
	}

	cc, cancel := c.cc, c.cancel
	c.cc, c.cancel = nil, nil
	defer cancel()

	cc.Drain()

	timer := time.NewTimer(c.cfg.DrainTimeout)
	defer timer.Stop()

	select {
	case <-cc.Closed():
	case <-timer.C:
		cc.Stop()
		c.logger.Warn("consumer drain timed out", "consumer", c.Name(), "timeout", c.cfg.DrainTimeout)
	case <-ctx.Done():
		cc.Stop()
		return fmt.Errorf("pause %s: %w", c.Name(), ctx.Err())
	}
	c.logger.Info("consumer paused", "consumer", c.Name())

	return nil
}

// Running reports whether the consumer is delivering messages.
func (c *GatedConsumer) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cc != nil
}

// Handled returns the number of messages processed successfully.
func (c *GatedConsumer) Handled() uint64 { return c.handled.Load() }

// Failed returns the number of messages whose handler returned an error.
func (c *GatedConsumer) Failed() uint64 { return c.failed.Load() }

func (c *GatedConsumer) handle(ctx context.Context, msg jetstream.Msg) {
	err := c.handler.Handle(ctx, msg)
	if err != nil {
		c.failed.Add(1)
		c.logger.Debug("message handler failed", "consumer", c.Name(), "subject", msg.Subject(), "error", err)
	} else {
		c.handled.Add(1)
	}

	if c.cfg.ManualAck {
		return
	}

	if err != nil {
		if nakErr := msg.Nak(); nakErr != nil {
			c.logger.Warn("failed to nak message", "consumer", c.Name(), "error", nakErr)
		}

		return
	}
	if ackErr := msg.Ack(); ackErr != nil {
		c.logger.Warn("failed to ack message", "consumer", c.Name(), "error", ackErr)
	}
}
