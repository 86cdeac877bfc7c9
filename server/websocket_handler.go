package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler authenticates the handshake credential before upgrading.
// A failed gate terminates the attempt with a plain HTTP 401; only
// authenticated connections ever reach the registry.
func (s *Server) WebSocketHandler() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		connectionID := uuid.New().String()

		session, err := s.gate.Authenticate(r.Context(), connectionID, handshakeCredential(r))
		if err != nil {
			log.Warn().Str("remote", r.RemoteAddr).Err(err).Msg("handshake rejected")
			http.Error(w, `{"success":false,"message":"authentication failed"}`, http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}

		c := newClient(connectionID, conn, r.RemoteAddr)
		s.clients.add(c)
		go c.writePump()

		s.coordinator.Admit(session)
		go c.readPump(s, session)
	}
}

// handshakeCredential pulls the bearer credential from the token query
// parameter or the Authorization header.
func handshakeCredential(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	token, _ := bearerToken(r)
	return token
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // non-browser client
	}
	allowed := s.config.GetAllowedOrigins()
	return allowed.IsAllowedOrigin("*") || allowed.IsAllowedOrigin(origin)
}
