// Package gate controls whether this instance talks to the outside world.
//
// A Gate owns the set of inbound channels (message consumers) and a
// production signal that outbound producers observe. The leader opens the
// gate, followers keep it closed:
//
//	g := gate.New(gate.WithLogger(logger))
//	_ = g.Register(consumer)
//
//	events, unsubscribe := g.Subscribe()
//	defer unsubscribe()
//
//	go func() {
//	    for ev := range events {
//	        producer.SetEnabled(ev.Enabled)
//	    }
//	}()
//
// Open resumes every inbound channel before announcing production enabled.
// Close announces production disabled before pausing the channels. Both
// directions therefore stop side effects as early as possible and start
// them only once the inputs are live.
package gate
