package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hivemindhq/hivemind/internal/auth"
	"github.com/hivemindhq/hivemind/internal/config"
	"github.com/hivemindhq/hivemind/internal/logging"
	"github.com/hivemindhq/hivemind/internal/middleware"
	"github.com/hivemindhq/hivemind/internal/secrets"
	"github.com/hivemindhq/hivemind/internal/storage"
	"github.com/hivemindhq/hivemind/internal/web"
	"github.com/hivemindhq/hivemind/internal/web/view"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires sessions, hashers, views, handlers, and middleware, and returns a
// ready server.
func New(cfg config.Config, store storage.Store, log logging.Logger) (*Server, error) {
	views, err := view.New()
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionIssuer, cfg.SessionTTL, clock)
	passwords := secrets.NewBcryptHasher(cfg.BcryptCost)
	cards := secrets.NewBcryptHasher(cfg.CardHashCost)

	mux := http.NewServeMux()
	handlers := web.New(store, sessions, passwords, cards, views, log, clock)
	handlers.Register(mux)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(log, mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}, nil
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
