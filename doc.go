// Package solo provides single-active-instance leader election over a
// shared lease record.
//
// Several identical replicas of a service compete for one "active" role.
// The winner (the leader) consumes and produces messages; the others stay
// idle followers until the leader stops or stops heartbeating. Leadership
// is decided through a single lease record in a store with atomic per-key
// compare-and-set, NATS JetStream KV by default.
//
// # Quick Start
//
//	cfg := solo.DefaultConfig()
//	cfg.LeaseID = "job-service-leader"
//
//	js, _ := jetstream.New(nc)
//	store, err := solo.OpenNATSLeaseStore(ctx, js, &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	g := gate.New()
//	_ = g.Register(ctx, consumer) // a subscription.GatedConsumer
//
//	mgr, err := solo.NewManager(&cfg, store, g)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := mgr.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Stop(context.Background())
//
// # Protocol
//
// A follower probes the lease every LeaderCheckInterval. It claims the
// lease, writing its own token and the current time, when the record is
// absent, unheld, already its own, or its heartbeat is older than
// HeartbeatExpiration. The leader refreshes the heartbeat every
// HeartbeatInterval. Exactly one of the two triggers is active at a time:
//
//	Follower: check trigger on,  heartbeat trigger off, gate closed
//	Leader:   check trigger off, heartbeat trigger on,  gate open
//	Released: both triggers cancelled, gate closed
//
// Stop and Release overwrite the lease with an empty holder, so another
// instance takes over on its next check instead of waiting for expiry.
//
// # Safety
//
// This is not a consensus protocol. A leader that is partitioned from the
// store keeps its gate open until it can reach the store again, while
// another instance may claim the expired lease. The overlap is bounded by
// HeartbeatExpiration and OperationTimeout; handlers must be idempotent.
//
// # Clocks
//
// Expiry compares the stored lastHeartbeat with the checking instance's
// clock. HeartbeatExpiration must exceed the worst clock skew between
// instances plus one HeartbeatInterval.
package solo
