package types

import "context"

// Hooks defines callbacks for leadership lifecycle events.
//
// All hooks are optional and run in background goroutines so they never block
// the election loop. The context passed to hooks is cancelled when the manager
// stops. Hook errors are logged and otherwise ignored.
//
// Example:
//
//	hooks := &solo.Hooks{
//	    OnStateChanged: func(ctx context.Context, from, to solo.State) error {
//	        if to == solo.StateLeader {
//	            return warmCaches(ctx)
//	        }
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnStateChanged is called after every leadership state transition.
	OnStateChanged func(ctx context.Context, from, to State) error

	// OnError is called when a recoverable error occurs (store failures, gate failures).
	OnError func(ctx context.Context, err error) error
}
