package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("errors.Is works through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("get lease: %w", ErrStoreUnavailable)
		require.ErrorIs(t, wrapped, ErrStoreUnavailable)
		require.NotErrorIs(t, wrapped, ErrStoreConflict)

		joined := errors.Join(ErrReleaseFailed, errors.New("additional context"))
		require.ErrorIs(t, joined, ErrReleaseFailed)
	})

	t.Run("all errors are distinct", func(t *testing.T) {
		allErrors := []error{
			ErrInvalidConfig,
			ErrLeaseStoreRequired,
			ErrGateRequired,
			ErrAlreadyStarted,
			ErrNotStarted,
			ErrStopped,
			ErrStoreUnavailable,
			ErrStoreConflict,
			ErrReleaseFailed,
			ErrInvalidLease,
			ErrChannelRegistered,
			ErrProductionDisabled,
		}

		seen := make(map[string]bool, len(allErrors))
		for _, err := range allErrors {
			msg := err.Error()
			require.False(t, seen[msg], "duplicate error message: %s", msg)
			seen[msg] = true
		}
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable", fmt.Errorf("put: %w", ErrStoreUnavailable), true},
		{"conflict", ErrStoreConflict, true},
		{"timeout message", errors.New("nats: timeout"), true},
		{"invalid lease", ErrInvalidLease, false},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
