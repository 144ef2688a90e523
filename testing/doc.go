// Package testing provides test utilities for solo.
//
// It starts embedded NATS servers with JetStream so lease stores and gated
// consumers can be exercised without external infrastructure, and ships a
// controllable clock for deterministic expiry tests.
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: KV bucket with lease-friendly settings
//   - CreateStream: Stream for gated consumer tests
//   - FakeClock: Manually advanced time source
//
// Example usage:
//
//	import (
//	    "testing"
//	    solotest "github.com/arloliu/solo/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := solotest.StartEmbeddedNATS(t)
//	    kv := solotest.CreateJetStreamKV(t, nc, "lease")
//	    // ...
//	}
package testing
