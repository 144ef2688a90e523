package kvutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	solotest "github.com/arloliu/solo/testing"
)

func TestLeaseBucketConfig(t *testing.T) {
	cfg := LeaseBucketConfig("solo-lease", 0)

	require.Equal(t, "solo-lease", cfg.Bucket)
	require.Equal(t, 1, cfg.Replicas)
	require.Equal(t, uint8(1), cfg.History)
	require.Zero(t, cfg.TTL, "lease expiry is driven by lastHeartbeat, not bucket TTL")

	require.Equal(t, 3, LeaseBucketConfig("b", 3).Replicas)
}

func TestEnsureBucket(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping embedded NATS test in short mode")
	}

	_, nc := solotest.StartEmbeddedNATS(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	t.Run("creates then reopens", func(t *testing.T) {
		cfg := LeaseBucketConfig("ensure-once", 1)

		kv1, err := EnsureBucket(ctx, js, cfg, 0)
		require.NoError(t, err)
		require.Equal(t, "ensure-once", kv1.Bucket())

		kv2, err := EnsureBucket(ctx, js, cfg, 0)
		require.NoError(t, err)
		require.Equal(t, kv1.Bucket(), kv2.Bucket())
	})

	t.Run("concurrent creates of the same bucket", func(t *testing.T) {
		const numWorkers = 5
		cfg := LeaseBucketConfig("ensure-concurrent", 1)

		var wg sync.WaitGroup
		errs := make(chan error, numWorkers)

		for range numWorkers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := EnsureBucket(ctx, js, cfg, 5)
				errs <- err
			}()
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, ccancel := context.WithCancel(ctx)
		ccancel()

		_, err := EnsureBucket(cctx, js, LeaseBucketConfig("ensure-cancelled", 1), 3)
		require.Error(t, err)
	})
}
