package contract

import (
	"chathub/domain"
	"chathub/domain/event"
	"context"
)

// EventSink is one session's outbound delivery channel. Consume must
// not block: implementations buffer and drop under backpressure.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// ICoordinator is the surface the transport layer drives. Every
// method is one atomic protocol transition.
type ICoordinator interface {
	Connect(ctx context.Context, displayName string, sink EventSink) (domain.Session, error)
	CreateRoom(ctx context.Context, sessionID domain.SessionID, cmd domain.CreateRoomCommand) error
	JoinRoom(ctx context.Context, sessionID domain.SessionID, cmd domain.JoinRoomCommand) error
	PostMessage(ctx context.Context, sessionID domain.SessionID, cmd domain.PostMessageCommand) error
	SetTyping(ctx context.Context, sessionID domain.SessionID, cmd domain.SetTypingCommand) error
	Disconnect(ctx context.Context, sessionID domain.SessionID)
}
