package errors

import "fmt"

var (
	// ErrMissingIdentity is fatal at connection level: the transport
	// must close the channel without any protocol exchange.
	ErrMissingIdentity = fmt.Errorf("missing identity")

	// Recoverable, reported to the requester only via room_error.
	ErrRoomNotFound = fmt.Errorf("room not found")
	ErrBadPassword  = fmt.Errorf("incorrect password")

	// ErrNotAMember marks a message or typing event for a room the
	// sender has not joined. Treated as client-side desync: dropped
	// silently, never surfaced to the user.
	ErrNotAMember = fmt.Errorf("not a member of the room")

	ErrInvalidRoomName  = fmt.Errorf("invalid room name")
	ErrPasswordRequired = fmt.Errorf("private room requires a password")
	ErrSessionNotFound  = fmt.Errorf("session not found")
)
