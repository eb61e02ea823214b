package event

import (
	"chathub/domain"
)

// DomainEvent is an outbound emission produced by the coordinator.
// EventName is the stable wire identifier used by the transport.
type DomainEvent interface {
	EventName() string
}

// RoomListing carries the full public room view. Sent to one session
// on connect and to everyone whenever membership or the room table
// changes.
type RoomListing struct {
	Rooms []domain.RoomSummary
}

func (RoomListing) EventName() string { return "rooms" }

// RoomJoined is sent to the joiner only: room metadata, the history
// snapshot, and the occupant list including the joiner.
type RoomJoined struct {
	Room      domain.RoomSummary `json:"room"`
	Messages  []domain.Message   `json:"messages"`
	Occupants []domain.Occupant  `json:"users"`
}

func (RoomJoined) EventName() string { return "room_joined" }

type RoomError struct {
	Reason string
}

func (RoomError) EventName() string { return "room_error" }

type MessagePosted struct {
	RoomID  domain.RoomID
	Message domain.Message
}

func (MessagePosted) EventName() string { return "message" }

type UserJoined struct {
	RoomID   domain.RoomID
	Occupant domain.Occupant
}

func (UserJoined) EventName() string { return "user_joined" }

type UserLeft struct {
	RoomID    domain.RoomID
	SessionID domain.SessionID
}

func (UserLeft) EventName() string { return "user_left" }

type UserTyping struct {
	RoomID      domain.RoomID    `json:"-"`
	SessionID   domain.SessionID `json:"sessionId"`
	DisplayName string           `json:"displayName"`
	IsTyping    bool             `json:"isTyping"`
}

func (UserTyping) EventName() string { return "user_typing" }
