// Package types provides the shared type definitions and interfaces of the solo library.
//
// Keeping them outside the root package lets the internal implementations
// (lease stores, metrics, loggers) and the public helper packages (gate,
// subscription, admin) depend on them without import cycles.
//
// Key types:
//   - LeaseRecord: The persisted lease shared by every instance
//   - Identity: The process-local identity competing for the lease
//   - LeaseStore: Atomic read-modify-write access to the lease
//   - CommunicationGate: Switch for inbound consumption and outbound production
//   - State: Leadership state of one instance
//   - Logger, MetricsCollector, Hooks: Ambient integration points
package types
