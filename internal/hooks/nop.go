// Package hooks provides the default no-op Hooks used when callers do not supply any.
package hooks

import (
	"context"

	"github.com/arloliu/solo/types"
)

// NopHooks implements every hook callback as a no-op.
type NopHooks struct{}

var (
	_ func(context.Context, types.State, types.State) error = (*NopHooks)(nil).OnStateChanged
	_ func(context.Context, error) error                    = (*NopHooks)(nil).OnError
)

// NewNop returns Hooks whose callbacks are all set, so callers never nil-check.
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnStateChanged: h.OnStateChanged,
		OnError:        h.OnError,
	}
}

// Fill returns a copy of hooks with every nil callback replaced by its no-op.
func Fill(hooks *types.Hooks) types.Hooks {
	filled := NewNop()
	if hooks == nil {
		return filled
	}
	if hooks.OnStateChanged != nil {
		filled.OnStateChanged = hooks.OnStateChanged
	}
	if hooks.OnError != nil {
		filled.OnError = hooks.OnError
	}

	return filled
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(_ context.Context, _, _ types.State) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
