// Package ws is the duplex transport endpoint: one websocket per
// session, upgraded with an identity supplied at connection time.
package ws

import (
	"chathub/contract"
	"chathub/sink"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type Config struct {
	WriteWait       time.Duration
	PongWait        time.Duration
	MaxMessageBytes int64
	SendBufferSize  int
}

func DefaultConfig() Config {
	return Config{
		WriteWait:       10 * time.Second,
		PongWait:        60 * time.Second,
		MaxMessageBytes: 8 * 1024,
		SendBufferSize:  64,
	}
}

func (c Config) pingInterval() time.Duration {
	return c.PongWait * 9 / 10
}

type Handler struct {
	log      *slog.Logger
	hub      contract.ICoordinator
	cfg      Config
	upgrader websocket.Upgrader
}

func NewHandler(log *slog.Logger, hub contract.ICoordinator, cfg Config) *Handler {
	return &Handler{
		log: log,
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement is a deployment concern (reverse
			// proxy); the hub itself accepts any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and registers the session. A
// connection without a username is closed immediately with no
// protocol exchange.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	username := r.URL.Query().Get("username")
	snk := sink.NewBuffered(h.cfg.SendBufferSize)

	session, err := h.hub.Connect(r.Context(), username, snk)
	if err != nil {
		conn.Close()
		return
	}

	client := &Client{
		conn:    conn,
		sink:    snk,
		session: session,
		hub:     h.hub,
		log:     h.log,
		cfg:     h.cfg,
	}

	go client.writePump()
	client.readPump(r.Context())
}
