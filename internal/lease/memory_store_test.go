package lease

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/solo/types"
)

func claimIfFree(token string, now time.Time) types.UpdateFunc {
	return func(current *types.LeaseRecord) *types.LeaseRecord {
		if current.Held() {
			return nil
		}

		return &types.LeaseRecord{Token: token, LastHeartbeat: &now}
	}
}

func TestMemoryStore_GetAndUpdate(t *testing.T) {
	ctx := t.Context()
	now := time.Now()
	s := NewMemoryStore()

	rec, err := s.GetAndUpdate(ctx, "lease", claimIfFree("a", now))
	require.NoError(t, err)
	require.Equal(t, "lease", rec.ID, "id is forced to the key")
	require.Equal(t, "a", rec.Token)

	rec, err = s.GetAndUpdate(ctx, "lease", claimIfFree("b", now))
	require.NoError(t, err)
	require.Nil(t, rec, "held lease must not be overwritten")
	require.Equal(t, "a", s.Get("lease").Token)
	require.Equal(t, 1, s.Writes())

	_, err = s.GetAndUpdate(ctx, "", claimIfFree("a", now))
	require.ErrorIs(t, err, types.ErrInvalidLease)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := t.Context()
	now := time.Now()
	s := NewMemoryStore()

	rec, err := s.GetAndUpdate(ctx, "lease", claimIfFree("a", now))
	require.NoError(t, err)

	rec.Token = "mutated"
	*rec.LastHeartbeat = now.Add(time.Hour)

	stored := s.Get("lease")
	require.Equal(t, "a", stored.Token)
	require.True(t, stored.LastHeartbeat.Equal(now))
}

func TestMemoryStore_SetAndHeartbeat(t *testing.T) {
	ctx := t.Context()
	now := time.Now()
	s := NewMemoryStore()

	id := types.Identity{ID: "lease", Token: "a", LastHeartbeat: now}
	require.NoError(t, s.Set(ctx, id.Record()))

	id.LastHeartbeat = now.Add(time.Second)
	rec, err := s.Heartbeat(ctx, id)
	require.NoError(t, err)
	require.True(t, rec.LastHeartbeat.Equal(now.Add(time.Second)))

	require.NoError(t, s.Set(ctx, ReleasedRecord("lease")))
	rec, err = s.Heartbeat(ctx, id)
	require.NoError(t, err)
	require.Nil(t, rec, "heartbeat must not resurrect a released lease")
	require.False(t, s.Get("lease").Held())

	require.ErrorIs(t, s.Set(ctx, types.LeaseRecord{}), types.ErrInvalidLease)
}

func TestMemoryStore_Failures(t *testing.T) {
	ctx := t.Context()
	s := NewMemoryStore()

	s.SetFailure(errors.New("disk on fire"))
	_, err := s.GetAndUpdate(ctx, "lease", claimIfFree("a", time.Now()))
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
	require.ErrorIs(t, s.Set(ctx, ReleasedRecord("lease")), types.ErrStoreUnavailable)

	s.SetFailure(types.ErrStoreConflict)
	_, err = s.GetAndUpdate(ctx, "lease", claimIfFree("a", time.Now()))
	require.ErrorIs(t, err, types.ErrStoreConflict)

	s.SetFailure(nil)
	_, err = s.GetAndUpdate(ctx, "lease", claimIfFree("a", time.Now()))
	require.NoError(t, err)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, s.Set(cctx, ReleasedRecord("lease")), types.ErrStoreUnavailable)
}

func TestMemoryStore_ConcurrentClaims(t *testing.T) {
	ctx := t.Context()
	now := time.Now()
	s := NewMemoryStore()

	const contenders = 10
	var wg sync.WaitGroup
	wins := make(chan string, contenders)

	for i := range contenders {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			rec, err := s.GetAndUpdate(ctx, "lease", claimIfFree(token, now))
			if err == nil && rec != nil {
				wins <- rec.Token
			}
		}(string(rune('a' + i)))
	}

	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)
	require.Equal(t, winners[0], s.Get("lease").Token)
}
