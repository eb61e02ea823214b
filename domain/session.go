// Package domain contains core concepts of the chat system.
// This file defines Session entities and related invariants.
package domain

import "time"

type SessionID string

// Session binds one connected participant to at most one room.
// CurrentRoom is empty while the session is not in any room.
// Typing is ephemeral presence state and is never persisted.
type Session struct {
	ID          SessionID
	Name        string
	CurrentRoom RoomID
	Typing      bool
	ConnectedAt time.Time
}

func (s Session) InRoom(roomID RoomID) bool {
	return s.CurrentRoom != "" && s.CurrentRoom == roomID
}

// Occupant is the projection of a Session exposed in presence lists.
type Occupant struct {
	ID       SessionID `json:"id"`
	Name     string    `json:"name"`
	IsOnline bool      `json:"isOnline"`
}

func (s Session) Occupant() Occupant {
	return Occupant{ID: s.ID, Name: s.Name, IsOnline: true}
}
