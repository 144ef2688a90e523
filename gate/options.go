package gate

import (
	"time"

	"github.com/arloliu/solo/internal/backoff"
	"github.com/arloliu/solo/internal/logging"
	"github.com/arloliu/solo/internal/metrics"
	"github.com/arloliu/solo/types"
)

// Option configures a Gate.
type Option func(*options)

type options struct {
	logger     types.Logger
	metrics    types.GateMetrics
	retry      backoff.Policy
	bufferSize int
	clock      func() time.Time
}

func defaultOptions() options {
	return options{
		logger:     logging.NewNop(),
		metrics:    metrics.NewNop(),
		retry:      backoff.DefaultPolicy(),
		bufferSize: 4,
		clock:      time.Now,
	}
}

// WithLogger sets the logger.
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the gate metrics sink.
func WithMetrics(m types.GateMetrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithResumeRetry sets how often a failing inbound channel resume is retried
// when the gate opens.
func WithResumeRetry(p backoff.Policy) Option {
	return func(o *options) {
		o.retry = p
	}
}

// WithSubscriberBuffer sets the channel buffer of each subscriber.
func WithSubscriberBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithClock overrides the time source used to stamp production events.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}
