package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Maphikza/btc-tx-broadcaster/internal/logger"
	"github.com/Maphikza/btc-tx-broadcaster/internal/network"
)

type Option func(*API)

func WithNetwork(n network.Network) Option {
	return func(a *API) { a.Network = n }
}

func WithAllowedOrigin(origin string) Option {
	return func(a *API) {
		if origin != "" {
			a.AllowedOrigin = origin
		}
	}
}

func WithJWTKey(key []byte) Option {
	return func(a *API) { a.JWTKey = key }
}

// Routes returns the service's HTTP handler.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/broadcast", ApplyMiddleware(a.BroadcastHandler,
		JSONContentTypeMiddleware,
		a.JWTMiddleware,
		MethodMiddleware(http.MethodPost),
		a.CORSMiddleware,
		LoggingMiddleware,
		RequestIDMiddleware,
		ErrorMiddleware,
	))
	mux.HandleFunc("/health", ApplyMiddleware(a.HealthHandler,
		a.CORSMiddleware,
		RequestIDMiddleware,
		ErrorMiddleware,
	))

	return mux
}

type Server struct {
	httpServer *http.Server
	listener   net.Listener
}

// NewServer binds addr. Requests are not served until Serve is called.
func NewServer(addr string, a *API) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		httpServer: &http.Server{
			Handler:      a.Routes(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		listener: listener,
	}, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	logger.Infof("Starting HTTP broadcast server on %s", s.Addr())
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
