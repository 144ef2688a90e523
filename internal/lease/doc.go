// Package lease provides types.LeaseStore implementations.
//
// # NATS JetStream KV
//
// NATSStore keeps one JSON-encoded lease record per key and implements
// compare-and-set with KV revisions:
//   - Create: first claim when no record exists
//   - Update(rev): every later write, rejected if another writer got there first
//   - Put: unconditional release
//
// A rejected compare-and-set surfaces as types.ErrStoreConflict. Connectivity
// failures surface as types.ErrStoreUnavailable.
//
// The bucket must not carry a TTL. Expiry is decided by comparing the
// record's lastHeartbeat with the reader's clock, so a record that vanished
// on its own would look like a released lease.
//
// # Memory
//
// MemoryStore is a mutex-guarded map for tests and single-process setups. It
// can inject failures to exercise the manager's error paths.
package lease
