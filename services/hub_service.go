package services

import (
	"chathub/contract"
	"chathub/domain"
	"chathub/runtime"
	"context"
)

// HubService is the facade the transport layer talks to. It keeps
// the websocket package decoupled from the runtime wiring.
type HubService struct {
	coordinator *runtime.Coordinator
}

func NewHubService(c *runtime.Coordinator) *HubService {
	return &HubService{coordinator: c}
}

func (s *HubService) Connect(ctx context.Context, displayName string, sink contract.EventSink) (domain.Session, error) {
	return s.coordinator.Connect(ctx, displayName, sink)
}

func (s *HubService) CreateRoom(ctx context.Context, sessionID domain.SessionID, cmd domain.CreateRoomCommand) error {
	return s.coordinator.CreateRoom(ctx, sessionID, cmd)
}

func (s *HubService) JoinRoom(ctx context.Context, sessionID domain.SessionID, cmd domain.JoinRoomCommand) error {
	return s.coordinator.JoinRoom(ctx, sessionID, cmd)
}

func (s *HubService) PostMessage(ctx context.Context, sessionID domain.SessionID, cmd domain.PostMessageCommand) error {
	return s.coordinator.PostMessage(ctx, sessionID, cmd)
}

func (s *HubService) SetTyping(ctx context.Context, sessionID domain.SessionID, cmd domain.SetTypingCommand) error {
	return s.coordinator.SetTyping(ctx, sessionID, cmd)
}

func (s *HubService) Disconnect(ctx context.Context, sessionID domain.SessionID) {
	s.coordinator.Disconnect(ctx, sessionID)
}
