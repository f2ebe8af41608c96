package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server wraps the HTTP listener. There is no write timeout: /v1/events
// holds responses open for as long as the subscriber stays connected.
type Server struct {
	HTTP *http.Server
	name string
}

type Options struct {
	Addr        string
	ServiceName string
	Logger      *zap.Logger
	Router      chi.Router
	// IdleTimeout defaults to 60s.
	IdleTimeout time.Duration
}

func New(opts Options) *Server {
	if opts.Router == nil {
		opts.Router = chi.NewRouter()
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           opts.Router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       opts.IdleTimeout,
	}
	if opts.Logger != nil {
		// Connection-level errors (TLS handshakes, bad framing) go through zap.
		srv.ErrorLog = zap.NewStdLog(opts.Logger.Named("http"))
	}
	return &Server{HTTP: srv, name: opts.ServiceName}
}

func (s *Server) Start(log *zap.Logger) error {
	log.Info("http server starting", zap.String("service", s.name), zap.String("addr", s.HTTP.Addr))
	return s.HTTP.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Open event streams end when their request context is cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}
