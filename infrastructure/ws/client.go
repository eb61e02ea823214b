package ws

import (
	"chathub/contract"
	"chathub/domain"
	"chathub/domain/event"
	cherr "chathub/errors"
	"chathub/sink"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Client glues one websocket connection to one session: the read
// pump feeds validated commands into the hub, the write pump drains
// the session's sink onto the wire.
type Client struct {
	conn    *websocket.Conn
	sink    *sink.Buffered
	session domain.Session
	hub     contract.ICoordinator
	log     *slog.Logger
	cfg     Config
}

// readPump blocks until the connection drops. Its deferred cleanup is
// the single place a disconnect is reported, so the coordinator sees
// exactly one Disconnect per session.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Disconnect(context.Background(), c.session.ID)
		c.sink.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("connection closed unexpectedly", "session_id", c.session.ID, "error", err)
			}
			return
		}
		c.dispatch(ctx, raw)
	}
}

func (c *Client) dispatch(ctx context.Context, raw []byte) {
	cmd, err := decodeCommand(raw)
	if err != nil {
		c.log.Debug("dropping malformed event", "session_id", c.session.ID, "error", err)
		return
	}

	var opErr error
	switch cmd := cmd.(type) {
	case domain.CreateRoomCommand:
		opErr = c.hub.CreateRoom(ctx, c.session.ID, cmd)
	case domain.JoinRoomCommand:
		opErr = c.hub.JoinRoom(ctx, c.session.ID, cmd)
	case domain.PostMessageCommand:
		opErr = c.hub.PostMessage(ctx, c.session.ID, cmd)
	case domain.SetTypingCommand:
		opErr = c.hub.SetTyping(ctx, c.session.ID, cmd)
	}
	if opErr == nil {
		return
	}

	// Not-a-member is client-side desync, never a user-facing error.
	if errors.Is(opErr, cherr.ErrNotAMember) {
		c.log.Debug("dropped event from non-member", "session_id", c.session.ID)
		return
	}

	_ = c.sink.Consume(ctx, event.RoomError{Reason: reasonFor(opErr)})
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, cherr.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, cherr.ErrBadPassword):
		return "Incorrect password"
	case errors.Is(err, cherr.ErrInvalidRoomName):
		return "Invalid room name"
	case errors.Is(err, cherr.ErrPasswordRequired):
		return "Private rooms require a password"
	default:
		return "Request failed"
	}
}

// writePump serializes every write to the connection: outbound
// envelopes from the sink plus keepalive pings. A closed sink means
// the session is gone and the connection can be torn down.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.pingInterval())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.sink.Events:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(toEnvelope(e)); err != nil {
				c.log.Debug("write failed", "session_id", c.session.ID, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
