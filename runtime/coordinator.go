package runtime

import (
	"chathub/auth"
	"chathub/contract"
	"chathub/domain"
	"chathub/domain/event"
	"chathub/errors"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Coordinator owns the authoritative room/session/history state and
// enforces the event protocol between them. Every handler runs as a
// single uninterruptible unit under one exclusive lock: no handler
// performs I/O or blocks (sinks are buffered and non-blocking), so a
// global lock keeps membership transitions and the occupant snapshots
// handed to joiners consistent without per-room lock bookkeeping.
type Coordinator struct {
	mu       sync.Mutex
	log      *slog.Logger
	registry *Registry
	history  *History
	sessions *Sessions
}

func NewCoordinator(log *slog.Logger, registry *Registry, history *History, sessions *Sessions) *Coordinator {
	return &Coordinator{
		log:      log,
		registry: registry,
		history:  history,
		sessions: sessions,
	}
}

// Connect registers a session and sends the current public room
// listing to it, and to it only. An empty display name is fatal for
// the connection: no session is created and no event is emitted.
func (c *Coordinator) Connect(ctx context.Context, displayName string, sink contract.EventSink) (domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.sessions.Register(displayName, sink)
	if err != nil {
		return domain.Session{}, err
	}

	c.emit(ctx, sink, event.RoomListing{Rooms: c.registry.ListPublicView()})
	c.log.Info("session connected", "session_id", session.ID, "name", session.Name)
	return session, nil
}

// CreateRoom creates the room and immediately treats it as an
// implicit join of the creator. The password is hashed outside the
// coordinator lock: argon2 is deliberately expensive and must not
// serialize unrelated handlers.
func (c *Coordinator) CreateRoom(ctx context.Context, sessionID domain.SessionID, cmd domain.CreateRoomCommand) error {
	var passwordHash string
	if cmd.Private && cmd.Password != "" {
		hash, err := auth.HashPassword(cmd.Password)
		if err != nil {
			return err
		}
		passwordHash = hash
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions.Get(sessionID); !ok {
		return errors.ErrSessionNotFound
	}

	room, err := c.registry.Create(cmd.Name, cmd.Private, passwordHash)
	if err != nil {
		return err
	}

	c.log.Info("room created", "room_id", room.ID, "name", room.Name, "private", room.Private)
	return c.moveToRoom(ctx, sessionID, room)
}

// JoinRoom checks its preconditions before any mutation, then runs
// the atomic leave-then-join transition.
func (c *Coordinator) JoinRoom(ctx context.Context, sessionID domain.SessionID, cmd domain.JoinRoomCommand) error {
	room, err := c.registry.Get(cmd.RoomID)
	if err != nil {
		return err
	}

	// Private rooms gate on the password; public rooms never check
	// one, even if a hash happens to be set. Verified outside the
	// coordinator lock (argon2 work); rooms are never removed, so the
	// precondition cannot be invalidated before the transition below.
	if room.Private {
		ok, err := auth.ComparePassword(cmd.Password, room.PasswordHash)
		if err != nil || !ok {
			return errors.ErrBadPassword
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions.Get(sessionID); !ok {
		return errors.ErrSessionNotFound
	}
	return c.moveToRoom(ctx, sessionID, room)
}

// moveToRoom performs the membership transition and all resulting
// emissions. Callers hold c.mu and have already validated the target.
// Observable order: "left old room" first, then the joined state.
func (c *Coordinator) moveToRoom(ctx context.Context, sessionID domain.SessionID, room domain.Room) error {
	session, ok := c.sessions.Get(sessionID)
	if !ok {
		return errors.ErrSessionNotFound
	}

	oldRoom := session.CurrentRoom
	c.sessions.SetRoom(sessionID, room.ID)

	// Counts are recomputed from the authoritative membership set at
	// broadcast time, never carried forward by deltas.
	if oldRoom != "" && oldRoom != room.ID {
		c.registry.SetOccupancy(oldRoom, len(c.sessions.OccupantsOf(oldRoom)))
	}
	c.registry.SetOccupancy(room.ID, len(c.sessions.OccupantsOf(room.ID)))

	if oldRoom != "" {
		c.broadcast(ctx, c.sessions.SinksForRoom(oldRoom), event.UserLeft{
			RoomID:    oldRoom,
			SessionID: sessionID,
		})
	}

	current, _ := c.registry.Get(room.ID)
	if sink, ok := c.sessions.Sink(sessionID); ok {
		c.emit(ctx, sink, event.RoomJoined{
			Room:      current.Summary(),
			Messages:  c.history.Snapshot(room.ID),
			Occupants: c.sessions.OccupantsOf(room.ID),
		})
	}

	c.broadcast(ctx, c.sessions.SinksForRoom(room.ID, sessionID), event.UserJoined{
		RoomID:   room.ID,
		Occupant: session.Occupant(),
	})
	c.broadcast(ctx, c.sessions.AllSinks(), event.RoomListing{Rooms: c.registry.ListPublicView()})

	c.log.Info("session joined room", "session_id", sessionID, "room_id", room.ID, "room", room.Name)
	return nil
}

// PostMessage appends to the room history and fans the message out to
// every occupant, sender included. A sender that is not a member of
// the target room is a misbehaving or stale client: nothing is
// mutated and the caller drops the error silently.
func (c *Coordinator) PostMessage(ctx context.Context, sessionID domain.SessionID, cmd domain.PostMessageCommand) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions.Get(sessionID)
	if !ok || !session.InRoom(cmd.RoomID) {
		return errors.ErrNotAMember
	}

	at := cmd.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	msg := domain.NewMessage(session.Name, cmd.Content, at)

	c.history.Append(cmd.RoomID, msg)
	c.broadcast(ctx, c.sessions.SinksForRoom(cmd.RoomID), event.MessagePosted{
		RoomID:  cmd.RoomID,
		Message: msg,
	})
	return nil
}

// SetTyping relays ephemeral typing state to the other occupants of
// the session's current room. Mismatched rooms are ignored the same
// way as for messages.
func (c *Coordinator) SetTyping(ctx context.Context, sessionID domain.SessionID, cmd domain.SetTypingCommand) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions.Get(sessionID)
	if !ok || !session.InRoom(cmd.RoomID) {
		return errors.ErrNotAMember
	}

	c.sessions.SetTyping(sessionID, cmd.Typing)
	c.broadcast(ctx, c.sessions.SinksForRoom(cmd.RoomID, sessionID), event.UserTyping{
		RoomID:      cmd.RoomID,
		SessionID:   sessionID,
		DisplayName: session.Name,
		IsTyping:    cmd.Typing,
	})
	return nil
}

// Disconnect removes the session, treating a held room as an implicit
// leave. It is a no-op for unknown sessions, so the transport's
// deferred cleanup cannot double-fire.
func (c *Coordinator) Disconnect(ctx context.Context, sessionID domain.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions.Remove(sessionID)
	if !ok {
		return
	}

	if room := session.CurrentRoom; room != "" {
		c.registry.SetOccupancy(room, len(c.sessions.OccupantsOf(room)))
		c.broadcast(ctx, c.sessions.SinksForRoom(room), event.UserLeft{
			RoomID:    room,
			SessionID: sessionID,
		})
		c.broadcast(ctx, c.sessions.AllSinks(), event.RoomListing{Rooms: c.registry.ListPublicView()})
	}

	c.log.Info("session disconnected", "session_id", sessionID, "name", session.Name)
}

func (c *Coordinator) emit(ctx context.Context, sink contract.EventSink, e event.DomainEvent) {
	if err := sink.Consume(ctx, e); err != nil {
		c.log.Debug("event delivery failed", "event", e.EventName(), "error", err)
	}
}

func (c *Coordinator) broadcast(ctx context.Context, sinks []contract.EventSink, e event.DomainEvent) {
	for _, sink := range sinks {
		c.emit(ctx, sink, e)
	}
}
