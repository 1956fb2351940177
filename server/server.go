package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/meridianhq/go-identity-server/auth"
	"github.com/meridianhq/go-identity-server/directory"
	"github.com/meridianhq/go-identity-server/internal/config"
	"github.com/meridianhq/go-identity-server/internal/obs"
	"github.com/meridianhq/go-identity-server/token"
	"github.com/meridianhq/go-identity-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the HTTP layer dispatches into.
type Deps struct {
	Auth      *auth.Service
	Tokens    *token.Manager
	Users     users.Repo
	Directory directory.Repo
}

// Pinger reports whether the backing store is reachable. *pgxpool.Pool
// satisfies it; fake-backed deployments leave it nil.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	env     string // Environment (e.g., "DEV", "production")
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  *config.Config
	deps    Deps
	pinger  Pinger
	log     zerolog.Logger
}

// Option modifies the Server instance.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithPinger wires a store health probe into /healthz.
func WithPinger(p Pinger) Option {
	return func(s *Server) {
		s.pinger = p
	}
}

func New(cfg *config.Config, deps Deps, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if deps.Auth == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("[Server New] token manager is required")
	}
	if deps.Users == nil {
		return nil, errors.New("[Server New] users repo is required")
	}
	if deps.Directory == nil {
		return nil, errors.New("[Server New] directory repo is required")
	}

	s := &Server{
		env:    cfg.Env,
		mux:    http.NewServeMux(),
		config: cfg,
		deps:   deps,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.handler = obs.Instrument(s.mux)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			s.log.Debug().Str("path", parts[0]).Msg("route")
		}
	}
}
