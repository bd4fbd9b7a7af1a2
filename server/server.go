// Package server assembles the grammar compilation HTTP service: it wires
// together persistence, the service layer, and the routed API into a single
// listener.
//
//   - POST   /api/v1/login           - log in with a username and password and receive a JWT.
//   - DELETE /api/v1/login/{id}      - end a user's authenticated session.
//   - POST   /api/v1/tokens          - mint a fresh token for the already-authenticated user.
//   - POST   /api/v1/users           - create a new account (admin only).
//   - GET    /api/v1/users           - list all accounts (admin only).
//   - GET    /api/v1/users/{id}      - get info on an account.
//   - PUT    /api/v1/users/{id}      - update an account.
//   - DELETE /api/v1/users/{id}      - delete an account.
//   - POST   /api/v1/grammars        - compile and persist a grammar from source.
//   - GET    /api/v1/grammars/{id}   - get the summary of a previously compiled grammar.
//   - GET    /api/v1/info            - get version info on the server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dekarrin/gudgeon/registry"
	"github.com/dekarrin/gudgeon/server/api"
	"github.com/dekarrin/gudgeon/server/middle"
	"github.com/dekarrin/gudgeon/server/tunas"
	"github.com/go-chi/chi/v5"
)

// Server is a fully-assembled grammar compilation service, ready to be
// attached to a listener via ListenAndServe or handed to an httptest server.
type Server struct {
	db     registry.Store
	tunas  tunas.Service
	router chi.Router
	cfg    Config
}

// New builds a Server from cfg, connecting to the configured persistence
// backend and assembling the full route tree. cfg is filled with defaults for
// any zero-valued fields before use.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect to persistence: %w", err)
	}

	svr := &Server{
		db:    db,
		tunas: tunas.Service{DB: db},
		cfg:   cfg,
	}
	svr.router = svr.routes()

	return svr, nil
}

// CreateUser is a convenience wrapper around the backend's user creation that
// callers (such as a CLI entrypoint seeding the initial admin account) can use
// without reaching into the service layer directly.
func (svr *Server) CreateUser(ctx context.Context, username, password, email string, role registry.Role) (registry.User, error) {
	return svr.tunas.CreateUser(ctx, username, password, email, role)
}

// ServeForever starts listening for and handling HTTP requests on addr. It
// blocks until the listener returns an error.
func (svr *Server) ServeForever(addr string) error {
	httpSvr := &http.Server{
		Addr:         addr,
		Handler:      svr.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return httpSvr.ListenAndServe()
}

func (svr *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middle.DontPanic())

	a := api.API{
		Backend:     svr.tunas,
		UnauthDelay: svr.cfg.UnauthDelay(),
		Secret:      svr.cfg.TokenSecret,
	}

	r.Route(api.PathPrefix, func(r chi.Router) {
		required := middle.RequireAuth(svr.db.Users(), a.Secret, a.UnauthDelay, registry.User{})
		optional := middle.OptionalAuth(svr.db.Users(), a.Secret, a.UnauthDelay, registry.User{})

		r.With(optional).Get("/info", a.HTTPGetInfo())

		r.With(optional).Post("/login", a.HTTPCreateLogin())
		r.With(required).Delete("/login/{id}", a.HTTPDeleteLogin())

		r.With(required).Post("/tokens", a.HTTPCreateToken())

		r.With(required).Get("/users", a.HTTPGetAllUsers())
		r.With(required).Post("/users", a.HTTPCreateUser())
		r.With(required).Get("/users/{id}", a.HTTPGetUser())
		r.With(required).Put("/users/{id}", a.HTTPUpdateUser())
		r.With(required).Delete("/users/{id}", a.HTTPDeleteUser())

		r.With(required).Post("/grammars", a.HTTPCompileGrammar())
		r.With(required).Get("/grammars/{id}", a.HTTPGetGrammar())
	})

	return r
}
