package lease

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/solo/types"
)

func TestHeartbeatFunc(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := types.Identity{ID: "lease", Token: "tok-a", LastHeartbeat: now}
	fn := HeartbeatFunc(id)

	t.Run("absent record", func(t *testing.T) {
		require.Nil(t, fn(nil))
	})

	t.Run("foreign holder", func(t *testing.T) {
		require.Nil(t, fn(&types.LeaseRecord{ID: "lease", Token: "tok-b"}))
	})

	t.Run("released lease", func(t *testing.T) {
		require.Nil(t, fn(&types.LeaseRecord{ID: "lease"}))
	})

	t.Run("own lease", func(t *testing.T) {
		old := now.Add(-time.Second)
		next := fn(&types.LeaseRecord{ID: "lease", Token: "tok-a", LastHeartbeat: &old})
		require.NotNil(t, next)
		require.Equal(t, "tok-a", next.Token)
		require.True(t, next.LastHeartbeat.Equal(now))
	})
}

func TestReleasedRecord(t *testing.T) {
	r := ReleasedRecord("lease")
	require.Equal(t, "lease", r.ID)
	require.False(t, r.Held())
	require.Nil(t, r.LastHeartbeat)
}
