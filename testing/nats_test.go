package testing

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
)

func TestStartEmbeddedNATS(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)

	require.NotNil(t, ns)
	require.True(t, nc.IsConnected())
	require.True(t, ns.ReadyForConnections(time.Second))

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	_, err = js.AccountInfo(t.Context())
	require.NoError(t, err, "JetStream should be enabled")
}

func TestCreateJetStreamKV(t *testing.T) {
	ctx := t.Context()
	_, nc := StartEmbeddedNATS(t)

	kv1 := CreateJetStreamKV(t, nc, "lease-1")
	kv2 := CreateJetStreamKV(t, nc, "lease-2")

	_, err := kv1.Put(ctx, "key", []byte("value1"))
	require.NoError(t, err)
	_, err = kv2.Put(ctx, "key", []byte("value2"))
	require.NoError(t, err)

	entry1, err := kv1.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value1"), entry1.Value())

	entry2, err := kv2.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value2"), entry2.Value())

	status, err := kv1.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), status.History())
}

func TestCreateStream(t *testing.T) {
	ctx := t.Context()
	_, nc := StartEmbeddedNATS(t)

	js, stream := CreateStream(t, nc, "JOBS", "jobs.>")
	require.Equal(t, "JOBS", stream.CachedInfo().Config.Name)

	_, err := js.Publish(ctx, "jobs.created", []byte("x"))
	require.NoError(t, err)

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), info.State.Msgs)
}

func TestFakeClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	require.Equal(t, start, c.Now())
	c.Advance(3 * time.Second)
	require.Equal(t, start.Add(3*time.Second), c.Now())

	c.Set(start)
	require.Equal(t, start, c.Now())
}
