// Package kvutil provides helpers for NATS JetStream KeyValue buckets.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultMaxRetries is used when EnsureBucket is called with maxRetries <= 0.
const DefaultMaxRetries = 3

// LeaseBucketConfig returns the bucket configuration used for lease records.
//
// Lease buckets keep a single revision per key and carry no TTL: lease
// expiry is decided from the lastHeartbeat field, not by the bucket.
//
// Parameters:
//   - bucket: Bucket name
//   - replicas: Stream replicas (values < 1 are treated as 1)
func LeaseBucketConfig(bucket string, replicas int) jetstream.KeyValueConfig {
	if replicas < 1 {
		replicas = 1
	}

	return jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "solo leader lease",
		History:     1,
		Storage:     jetstream.FileStorage,
		Replicas:    replicas,
	}
}

// EnsureBucket creates or opens a KV bucket, retrying transient failures.
//
// Several instances usually start together and race to create the same
// bucket; losing that race (ErrBucketExists) falls back to opening it.
// Retries back off exponentially starting at 10ms.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - config: KV bucket configuration
//   - maxRetries: Maximum attempts (DefaultMaxRetries when <= 0)
//
// Returns:
//   - jetstream.KeyValue: The KV bucket handle
//   - error: Last error after all attempts, or the context error
func EnsureBucket(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.KeyValueConfig,
	maxRetries int,
) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	var lastErr error
	backoff := 10 * time.Millisecond

	for attempt := 1; attempt <= maxRetries; attempt++ {
		kv, err := openOrCreate(ctx, js, config)
		if err == nil {
			return kv, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled while ensuring KV bucket %s: %w", config.Bucket, ctx.Err())
		}

		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		config.Bucket, maxRetries, lastErr)
}

func openOrCreate(ctx context.Context, js jetstream.JetStream, config jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	kv, err := js.CreateKeyValue(ctx, config)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketExists) {
		return nil, err
	}

	// Created concurrently by another instance, possibly with a different
	// description. Either way the existing bucket is usable.
	kv, err = js.KeyValue(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket exists but failed to open: %w", err)
	}

	return kv, nil
}
