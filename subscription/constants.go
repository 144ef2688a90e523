package subscription

import "time"

// Default configuration values for GatedConsumer.
const (
	// DefaultAckWait is the default duration to wait for acknowledgment.
	DefaultAckWait = 30 * time.Second

	// DefaultMaxDeliver is the default maximum delivery attempts.
	DefaultMaxDeliver = 5

	// DefaultInactiveThreshold is the default inactive consumer cleanup threshold.
	DefaultInactiveThreshold = 24 * time.Hour

	// DefaultDrainTimeout bounds how long Pause waits for in-flight messages.
	DefaultDrainTimeout = 10 * time.Second
)
