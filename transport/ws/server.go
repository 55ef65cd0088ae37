// Package ws is the realtime edge: it upgrades HTTP requests, frames events
// as JSON, and dispatches inbound client events to the hub, the router and
// the call coordinator.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chathub/calls"
	"chathub/router"
	"chathub/runtime"
)

// TokenVerifier gates the upgrade when configured. A nil verifier leaves the
// endpoint open, matching deployments that terminate auth upstream.
type TokenVerifier interface {
	ValidateToken(tokenString string) error
}

type Server struct {
	log      *slog.Logger
	upgrader websocket.Upgrader
	validate *validator.Validate

	hub      *runtime.Hub
	router   *router.Router
	calls    *calls.Coordinator
	verifier TokenVerifier

	bufferSize int
}

func NewServer(log *slog.Logger, hub *runtime.Hub, rt *router.Router,
	coordinator *calls.Coordinator, verifier TokenVerifier, bufferSize int) *Server {
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  8192,
			WriteBufferSize: 8192,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		validate:   validator.New(),
		hub:        hub,
		router:     rt,
		calls:      coordinator,
		verifier:   verifier,
		bufferSize: bufferSize,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.verifier != nil {
		if err := s.verifier.ValidateToken(bearerToken(r)); err != nil {
			s.log.Warn("Rejected unauthenticated upgrade", "remote", r.RemoteAddr, "error", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	connID := uuid.NewString()
	conn := newConn(s.log, connID, sock, s.bufferSize)
	s.hub.OnConnect(connID, conn)

	ctx := r.Context()
	go conn.writePump()
	conn.readPump(ctx, func(ctx context.Context, f frame) {
		s.dispatch(ctx, conn, f)
	})

	s.hub.OnDisconnect(ctx, connID)
	conn.close()
}

// bearerToken pulls the credential from the Authorization header, falling
// back to the token query parameter for browser websocket clients that
// cannot set headers.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return r.URL.Query().Get("token")
}
