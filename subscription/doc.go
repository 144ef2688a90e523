// Package subscription adapts NATS JetStream consumers and publishers to the
// communication gate.
//
// The package includes:
//
//   - GatedConsumer: a durable JetStream consumer implementing
//     types.InboundChannel, so the gate can pause and resume it
//   - GatedPublisher: a JetStream publisher that refuses to publish while
//     production is disabled
//
// Register every GatedConsumer with the gate and feed each GatedPublisher
// from gate.Subscribe; only the leader then consumes or produces.
package subscription
