package subscription

import "errors"

// Configuration errors.
var (
	// ErrStreamRequired indicates ConsumerConfig.StreamName is empty.
	ErrStreamRequired = errors.New("stream name is required")

	// ErrDurableRequired indicates ConsumerConfig.Durable is empty.
	ErrDurableRequired = errors.New("durable consumer name is required")

	// ErrHandlerRequired indicates a nil MessageHandler.
	ErrHandlerRequired = errors.New("message handler is required")
)
