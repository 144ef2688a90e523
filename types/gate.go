package types

import (
	"context"
	"time"
)

// InboundChannel is a message source that can be paused and resumed.
//
// The communication gate pauses every registered channel while the instance
// is not the leader. Pause and Resume must be idempotent.
type InboundChannel interface {
	// Name returns a stable identifier used in logs.
	Name() string

	// Pause stops delivering messages until Resume is called.
	Pause(ctx context.Context) error

	// Resume starts or restarts message delivery.
	Resume(ctx context.Context) error
}

// ProductionEvent notifies observers whether outbound production is allowed.
type ProductionEvent struct {
	Enabled bool
	At      time.Time
}

// CommunicationGate switches all side-effecting communication on or off.
//
// Open resumes inbound consumption and then enables production. Close
// disables production first and then pauses inbound consumption.
type CommunicationGate interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	IsOpen() bool
}
