package solo

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/solo/internal/kvutil"
	"github.com/arloliu/solo/internal/lease"
)

// OpenNATSLeaseStore returns a lease store on the JetStream KV bucket named
// by cfg.LeaseBucket, creating the bucket if needed.
//
// Concurrent instances may call it at the same time; losing the creation
// race simply opens the existing bucket.
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	store, err := solo.OpenNATSLeaseStore(ctx, js, &cfg)
func OpenNATSLeaseStore(ctx context.Context, js jetstream.JetStream, cfg *Config) (LeaseStore, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	SetDefaults(cfg)

	kv, err := kvutil.EnsureBucket(ctx, js, kvutil.LeaseBucketConfig(cfg.LeaseBucket, cfg.LeaseBucketReplicas), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open lease bucket: %w", err)
	}

	return lease.NewNATSStore(kv), nil
}

// NewMemoryLeaseStore returns an in-process lease store. Managers sharing
// the returned store compete for the same leases, which suits tests and
// single-process setups.
func NewMemoryLeaseStore() LeaseStore {
	return lease.NewMemoryStore()
}
