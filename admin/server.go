package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/arloliu/solo/internal/logging"
	"github.com/arloliu/solo/types"
)

const readHeaderTimeout = 5 * time.Second

// Server runs the management router on its own listener.
type Server struct {
	srv    *http.Server
	logger types.Logger
	errCh  chan error
}

// NewServer creates a server listening on addr once Start is called.
func NewServer(addr string, handler http.Handler, logger types.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: logger,
		errCh:  make(chan error, 1),
	}
}

// Start binds the listener and serves in the background.
//
// Returns:
//   - net.Addr: The bound address, useful when addr used port 0
//   - error: When the listener cannot be created
func (s *Server) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}

	go func() {
		err := s.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("admin server stopped unexpectedly", "error", err)
			s.errCh <- err
		}
		close(s.errCh)
	}()

	s.logger.Info("admin server listening", "addr", ln.Addr().String())

	return ln.Addr(), nil
}

// Err is closed when the server stops and carries the error if it stopped on its own.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Shutdown stops accepting requests and waits for active ones, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
