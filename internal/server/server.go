// Package server owns the listening socket and the http.Server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/greeting-server/internal/platform/logging"
)

// ErrAlreadyStarted is returned by Start on a server that was started before.
var ErrAlreadyStarted = errors.New("server already started")

// BindError reports that the listen address could not be acquired.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// Server serves one handler on one TCP address.
type Server struct {
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
	errs     chan error
}

// New returns a server for addr. Nothing is bound until Start.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    64 << 10, // 64 KB
		},
		errs: make(chan error, 1),
	}
}

// Start binds the listener and serves in the background. It returns a
// *BindError when the address cannot be acquired and logs one startup line
// on success.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return &BindError{Addr: s.httpServer.Addr, Err: err}
	}
	s.listener = ln

	port := listenPort(ln.Addr())
	applog.LogInfo(ctx, "server running on port "+port,
		zap.String("port", port),
		zap.String("addr", ln.Addr().String()),
	)

	go func() {
		defer close(s.errs)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Errors delivers a serve loop failure, if any, and is closed once serving stops.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func listenPort(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return strconv.Itoa(tcp.Port)
	}
	_, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return port
}
