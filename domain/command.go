package domain

import "time"

// Command is an inbound client intent already validated at the
// transport boundary. RoomID is empty for commands that do not
// target an existing room.
type Command interface {
	Room() RoomID
}

type CreateRoomCommand struct {
	Name     string
	Private  bool
	Password string
}

func (c CreateRoomCommand) Room() RoomID { return "" }

type JoinRoomCommand struct {
	RoomID   RoomID
	Password string
}

func (c JoinRoomCommand) Room() RoomID { return c.RoomID }

type PostMessageCommand struct {
	RoomID    RoomID
	Content   string
	CreatedAt time.Time
}

func (c PostMessageCommand) Room() RoomID { return c.RoomID }

type SetTypingCommand struct {
	RoomID RoomID
	Typing bool
}

func (c SetTypingCommand) Room() RoomID { return c.RoomID }
