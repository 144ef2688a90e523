// Package natsutil classifies NATS client errors for the lease store.
package natsutil

import (
	"context"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/solo/types"
)

// IsConnectivityError reports whether err is caused by the connection to
// NATS rather than by the request itself: timeouts, disconnections,
// unreachable servers and missing JetStream responses.
//
// Kept out of the types package so that types does not import NATS.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrConnectionReconnecting) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, jetstream.ErrJetStreamNotEnabled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}

// IsWrongLastRevision reports whether err is a KV compare-and-set rejection,
// that is, the key changed since the revision the caller read.
func IsWrongLastRevision(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}

	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}

	return strings.Contains(err.Error(), "wrong last sequence")
}

// Classify maps a raw NATS error onto the lease store sentinels.
//
// Compare-and-set rejections become types.ErrStoreConflict, everything else
// becomes types.ErrStoreUnavailable. The original error stays in the chain.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsWrongLastRevision(err) {
		return errors.Join(types.ErrStoreConflict, wrapOp(op, err))
	}

	return errors.Join(types.ErrStoreUnavailable, wrapOp(op, err))
}

type opError struct {
	op  string
	err error
}

func (e *opError) Error() string { return e.op + ": " + e.err.Error() }
func (e *opError) Unwrap() error { return e.err }

func wrapOp(op string, err error) error {
	return &opError{op: op, err: err}
}
