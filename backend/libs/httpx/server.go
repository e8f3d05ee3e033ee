package httpx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultShutdownGrace bounds how long Run waits for in-flight requests after cancellation.
const DefaultShutdownGrace = 10 * time.Second

// Server serves a middleware-wrapped handler and drains it when its context ends.
type Server struct {
	srv   *http.Server
	log   *zap.Logger
	grace time.Duration
	bound chan net.Addr
}

// NewServer builds an HTTP server; middlewares are applied with the first one outermost.
func NewServer(addr string, handler http.Handler, logger *zap.Logger, middlewares ...Middleware) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Chain(handler, middlewares...),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       time.Minute,
			ErrorLog:          zap.NewStdLog(logger.Named("http")),
		},
		log:   logger,
		grace: DefaultShutdownGrace,
		bound: make(chan net.Addr, 1),
	}
}

// WithShutdownGrace overrides DefaultShutdownGrace.
func (s *Server) WithShutdownGrace(d time.Duration) *Server {
	if d > 0 {
		s.grace = d
	}
	return s
}

// Bound delivers the listening address once Run has bound its socket.
func (s *Server) Bound() <-chan net.Addr {
	return s.bound
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.bound <- ln.Addr()
	s.log.Info("http server listening", zap.Stringer("addr", ln.Addr()))

	served := make(chan error, 1)
	go func() { served <- s.srv.Serve(ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.grace)
	defer cancel()
	s.log.Info("http server draining", zap.Duration("grace", s.grace))
	if err := s.srv.Shutdown(drainCtx); err != nil {
		return err
	}
	<-served
	return nil
}
