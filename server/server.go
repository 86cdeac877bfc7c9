package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/loophq/go-chat-server/chat"
	"github.com/loophq/go-chat-server/directory"
	"github.com/loophq/go-chat-server/identity"
	"github.com/loophq/go-chat-server/internal/config"
	"github.com/loophq/go-chat-server/messages"
	"github.com/loophq/go-chat-server/registry"
)

// Repos holds the directory dependencies for the Server
type Repos struct {
	Users   directory.UserRepo
	Tenants directory.TenantRepo
}

type Server struct {
	env         string // Environment (e.g., "DEV", "production")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	repos       Repos
	verifier    identity.Verifier
	gate        *identity.Gate
	store       messages.Store
	registry    *registry.Registry
	clients     *clientManager
	coordinator *chat.Coordinator
}

func New(cfg config.Config, repos Repos, verifier identity.Verifier, store messages.Store) (*Server, error) {
	if repos.Users == nil {
		return nil, errors.New("[Server New] Users repo is required")
	}
	if repos.Tenants == nil {
		return nil, errors.New("[Server New] Tenants repo is required")
	}
	if verifier == nil {
		return nil, errors.New("[Server New] verifier is required")
	}
	if store == nil {
		return nil, errors.New("[Server New] message store is required")
	}

	gate, err := identity.NewGate(verifier, repos.Users)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] NewGate")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		repos:    repos,
		verifier: verifier,
		gate:     gate,
		store:    store,
		registry: registry.New(),
		clients:  newClientManager(),
	}
	s.env = cfg.GetEnv()

	coordinator, err := chat.NewCoordinator(s.registry, s.clients, store)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] NewCoordinator")
	}
	s.coordinator = coordinator

	// Bootstrap: seed a demo tenant and users in DEV when the directory is empty
	if err := s.SeedDevData(); err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to seed dev data")
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Shutdown closes every live websocket connection.
func (s *Server) Shutdown() {
	s.clients.CloseAll()
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
