package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/welldanyogia/projecthub-backend/internal/auth"
	"github.com/welldanyogia/projecthub-backend/internal/logger"
)

// Server upgrades HTTP requests and binds each connection to the caller's channel
type Server struct {
	hub      *Hub
	secret   string
	upgrader websocket.Upgrader
	security *logger.SecurityLogger
	logger   *slog.Logger
}

// NewServer creates a websocket endpoint backed by hub
func NewServer(hub *Hub, secret string, upgrader websocket.Upgrader, security *logger.SecurityLogger, logger *slog.Logger) *Server {
	return &Server{
		hub:      hub,
		secret:   secret,
		upgrader: upgrader,
		security: security,
		logger:   logger,
	}
}

// ServeHTTP authenticates the session after the upgrade. A missing or invalid
// credential closes the connection with a policy violation frame.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		}
		return
	}

	claims, err := auth.ParseToken(s.secret, credential(r))
	if err != nil {
		if s.security != nil {
			s.security.AuthFailure(r.RemoteAddr, r.URL.Path, "invalid websocket credential")
		}
		deadline := time.Now().Add(writeWait)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"), deadline)
		conn.Close()
		return
	}

	client := NewClient(s.hub, conn, claims.UserID, s.logger)
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// credential reads the token from the query string or the Authorization header
func credential(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	token, _ := auth.BearerToken(r.Header.Get("Authorization"))
	return token
}
