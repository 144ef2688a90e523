package gate

import (
	"sync"

	"github.com/arloliu/solo/types"
)

// subscriber receives production events without ever blocking the gate.
type subscriber struct {
	ch     chan types.ProductionEvent
	mu     sync.Mutex
	closed bool
}

// send delivers ev, evicting the oldest queued event when the buffer is
// full. A slow subscriber may miss intermediate events but always observes
// the latest one.
func (s *subscriber) send(ev types.ProductionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	for {
		select {
		case s.ch <- ev:
			return
		default:
		}

		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
