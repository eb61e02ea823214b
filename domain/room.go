// Package domain contains core concepts of the chat system.
// This file defines Room entities and their public projections.
// No runtime, network, or UI logic should be added here.
package domain

type RoomID string

// Room is the authoritative record for a chat room.
// PasswordHash is only ever set for private rooms and must never
// cross the registry boundary; clients only see RoomSummary.
type Room struct {
	ID           RoomID
	Name         string
	Private      bool
	PasswordHash string
	Occupants    int
}

// RoomSummary is the projection of a Room exposed in listings.
type RoomSummary struct {
	ID        RoomID `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"isPrivate"`
	UserCount int    `json:"userCount"`
}

func (r Room) Summary() RoomSummary {
	return RoomSummary{
		ID:        r.ID,
		Name:      r.Name,
		IsPrivate: r.Private,
		UserCount: r.Occupants,
	}
}

const (
	MinRoomNameLength = 1
	MaxRoomNameLength = 50
)
