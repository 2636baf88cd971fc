// Package server runs an http.Handler, usually a compiled roa Dispatcher,
// on the transport selected by config.ServerConfig.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/isgasho/roa/config"
)

const (
	TransportHTTP     = "http"
	TransportFastHTTP = "fasthttp"
)

// ErrUnknownTransport is returned by Serve for a transport other than
// TransportHTTP or TransportFastHTTP.
var ErrUnknownTransport = errors.New("server: unknown transport")

// Server serves a handler until its context is cancelled.
type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
	logger  *zap.Logger
}

// New returns a Server. A nil logger is replaced with zap.NewNop.
func New(cfg config.ServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// Run listens on the configured address and calls Serve.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within ShutdownTimeout. It returns nil after a clean
// shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var serve func() error
	var shutdown func(context.Context) error

	switch s.cfg.Transport {
	case "", TransportHTTP:
		srv := s.httpServer()
		serve = func() error {
			if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
		shutdown = srv.Shutdown

	case TransportFastHTTP:
		srv := s.fastHTTPServer()
		serve = func() error { return srv.Serve(ln) }
		shutdown = srv.ShutdownWithContext

	default:
		_ = ln.Close()
		return fmt.Errorf("%w: %q", ErrUnknownTransport, s.cfg.Transport)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server started",
			zap.String("address", ln.Addr().String()),
			zap.String("transport", s.transport()),
			zap.Bool("h2c", s.cfg.H2C))

		return serve()
	})

	g.Go(func() error {
		<-gCtx.Done()

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := shutdown(shutdownCtx); err != nil {
			s.logger.Warn("server shutdown incomplete", zap.Error(err))
			return fmt.Errorf("server: shutdown: %w", err)
		}

		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

func (s *Server) transport() string {
	if s.cfg.Transport == "" {
		return TransportHTTP
	}
	return s.cfg.Transport
}

func (s *Server) httpServer() *http.Server {
	handler := s.handler
	if s.cfg.H2C {
		handler = h2c.NewHandler(handler, &http2.Server{IdleTimeout: s.cfg.IdleTimeout})
	}

	return &http.Server{
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		ErrorLog:     zap.NewStdLog(s.logger),
	}
}

func (s *Server) fastHTTPServer() *fasthttp.Server {
	return &fasthttp.Server{
		Handler:                      fasthttpadaptor.NewFastHTTPHandler(s.handler),
		ReadTimeout:                  s.cfg.ReadTimeout,
		WriteTimeout:                 s.cfg.WriteTimeout,
		IdleTimeout:                  s.cfg.IdleTimeout,
		TCPKeepalive:                 true,
		CloseOnShutdown:              true,
		DisablePreParseMultipartForm: true,
		NoDefaultServerHeader:        true,
		Logger:                       zap.NewStdLog(s.logger),
	}
}
