package solo

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/solo/gate"
	"github.com/arloliu/solo/internal/lease"
	"github.com/arloliu/solo/internal/logging"
	solotest "github.com/arloliu/solo/testing"
)

type natsInstance struct {
	mgr  *Manager
	gate *gate.Gate
}

func newNATSInstance(t *testing.T, js jetstream.JetStream, bucket string) *natsInstance {
	t.Helper()

	cfg := TestConfig()
	cfg.LeaseBucket = bucket

	store, err := OpenNATSLeaseStore(t.Context(), js, &cfg)
	require.NoError(t, err)

	g := gate.New()
	mgr, err := NewManager(&cfg, store, g, WithLogger(logging.NewTest(t)))
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = mgr.Stop(ctx)
	})

	return &natsInstance{mgr: mgr, gate: g}
}

func countLeaders(instances ...*natsInstance) int {
	n := 0
	for _, in := range instances {
		if in.mgr.IsLeader() {
			n++
		}
	}

	return n
}

func TestOpenNATSLeaseStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping embedded NATS test in short mode")
	}

	_, nc := solotest.StartEmbeddedNATS(t)
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	cfg := TestConfig()
	cfg.LeaseBucket = "open-store"

	first, err := OpenNATSLeaseStore(t.Context(), js, &cfg)
	require.NoError(t, err)
	second, err := OpenNATSLeaseStore(t.Context(), js, &cfg)
	require.NoError(t, err, "reopening an existing bucket must succeed")

	require.NoError(t, first.Set(t.Context(), lease.ReleasedRecord("shared")))
	rec, err := second.GetAndUpdate(t.Context(), "shared", func(current *LeaseRecord) *LeaseRecord {
		require.NotNil(t, current)
		return nil
	})
	require.NoError(t, err)
	require.Nil(t, rec)

	_, err = OpenNATSLeaseStore(t.Context(), js, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestManager_NATSFailover(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping embedded NATS test in short mode")
	}

	ctx := t.Context()
	_, nc := solotest.StartEmbeddedNATS(t)
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	a := newNATSInstance(t, js, "failover")
	b := newNATSInstance(t, js, "failover")

	require.NoError(t, a.mgr.Start(ctx))
	require.NoError(t, b.mgr.Start(ctx))

	require.Eventually(t, func() bool { return countLeaders(a, b) == 1 }, 2*time.Second, 10*time.Millisecond)

	// Leadership stays put across several heartbeat intervals.
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, 1, countLeaders(a, b))

	leader, follower := a, b
	if b.mgr.IsLeader() {
		leader, follower = b, a
	}
	require.True(t, leader.gate.IsOpen())
	require.False(t, follower.gate.IsOpen())

	require.NoError(t, leader.mgr.Stop(ctx))
	require.Equal(t, StateReleased, leader.mgr.State())
	require.False(t, leader.gate.IsOpen())

	// A released lease is taken over on the next check, well before expiry.
	require.NoError(t, <-follower.mgr.WaitState(StateLeader, TestConfig().HeartbeatExpiration))
	require.True(t, follower.gate.IsOpen())
}

func TestManager_NATSTakeoverAfterCrash(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping embedded NATS test in short mode")
	}

	ctx := t.Context()
	_, nc := solotest.StartEmbeddedNATS(t)
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	a := newNATSInstance(t, js, "crash")
	require.NoError(t, a.mgr.Start(ctx))
	require.True(t, a.mgr.IsLeader())

	b := newNATSInstance(t, js, "crash")
	require.NoError(t, b.mgr.Start(ctx))
	require.Equal(t, StateFollower, b.mgr.State())

	// Kill a's event loop without releasing, as a crashed process would.
	a.mgr.cancel()
	<-a.mgr.done
	crashed := time.Now()

	require.NoError(t, <-b.mgr.WaitState(StateLeader, 2*time.Second))
	require.GreaterOrEqual(t, time.Since(crashed), TestConfig().HeartbeatExpiration-2*TestConfig().HeartbeatInterval,
		"takeover must wait for the lease to expire")
	require.Equal(t, b.mgr.Identity().Token, mustGetToken(t, js, "crash", b.mgr.Config().LeaseID))
}

func mustGetToken(t *testing.T, js jetstream.JetStream, bucket, id string) string {
	t.Helper()

	kv, err := js.KeyValue(t.Context(), bucket)
	require.NoError(t, err)

	rec, err := lease.NewNATSStore(kv).Get(t.Context(), id)
	require.NoError(t, err)
	require.NotNil(t, rec)

	return rec.Token
}
