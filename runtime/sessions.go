package runtime

import (
	"chathub/contract"
	"chathub/domain"
	"chathub/errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type sessionState struct {
	session domain.Session
	sink    contract.EventSink
}

// Sessions tracks each live connection's identity, room membership
// and delivery sink. It performs no broadcasting itself: the
// coordinator is responsible for emitting leave/join notices in the
// correct order around membership transitions.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionState
	order    []domain.SessionID
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[domain.SessionID]*sessionState)}
}

// Register creates a session for a connection. An empty display name
// is rejected: the caller must close the connection without any
// further protocol exchange.
func (s *Sessions) Register(displayName string, sink contract.EventSink) (domain.Session, error) {
	if strings.TrimSpace(displayName) == "" {
		return domain.Session{}, errors.ErrMissingIdentity
	}

	session := domain.Session{
		ID:          domain.SessionID(uuid.NewString()),
		Name:        displayName,
		ConnectedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = &sessionState{session: session, sink: sink}
	s.order = append(s.order, session.ID)
	return session, nil
}

func (s *Sessions) Get(id domain.SessionID) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	return state.session, true
}

// SetRoom records a membership transition. Typing state is ephemeral
// per room, so a switch always clears it. Passing an empty RoomID
// leaves the session room-less.
func (s *Sessions) SetRoom(id domain.SessionID, roomID domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.sessions[id]; ok {
		state.session.CurrentRoom = roomID
		state.session.Typing = false
	}
}

// SetTyping flips the ephemeral typing flag. Returns false when the
// session is unknown.
func (s *Sessions) SetTyping(id domain.SessionID, typing bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return false
	}
	state.session.Typing = typing
	return true
}

// OccupantsOf derives the presence list for a room in session
// registration order, not alphabetical.
func (s *Sessions) OccupantsOf(roomID domain.RoomID) []domain.Occupant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var occupants []domain.Occupant
	for _, id := range s.order {
		if state, ok := s.sessions[id]; ok && state.session.InRoom(roomID) {
			occupants = append(occupants, state.session.Occupant())
		}
	}
	return occupants
}

// Remove deletes the session and returns its final state so the
// caller can treat a held room as an implicit leave.
func (s *Sessions) Remove(id domain.SessionID) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	delete(s.sessions, id)
	for i, sid := range s.order {
		if sid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return state.session, true
}

func (s *Sessions) Sink(id domain.SessionID) (contract.EventSink, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return state.sink, true
}

// SinksForRoom resolves the delivery channels of a room's occupants,
// optionally excluding one session (the joiner or the typist).
func (s *Sessions) SinksForRoom(roomID domain.RoomID, exclude ...domain.SessionID) []contract.EventSink {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sinks []contract.EventSink
	for _, id := range s.order {
		state, ok := s.sessions[id]
		if !ok || !state.session.InRoom(roomID) {
			continue
		}
		if excluded(id, exclude) {
			continue
		}
		sinks = append(sinks, state.sink)
	}
	return sinks
}

// AllSinks returns every connected session's sink, for listing
// broadcasts addressed to everyone.
func (s *Sessions) AllSinks() []contract.EventSink {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(s.order))
	for _, id := range s.order {
		if state, ok := s.sessions[id]; ok {
			sinks = append(sinks, state.sink)
		}
	}
	return sinks
}

func excluded(id domain.SessionID, exclude []domain.SessionID) bool {
	for _, ex := range exclude {
		if id == ex {
			return true
		}
	}
	return false
}
