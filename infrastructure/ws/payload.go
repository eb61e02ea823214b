package ws

import (
	"chathub/domain"
	"chathub/domain/event"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Inbound event vocabulary.
const (
	TypeCreateRoom = "create_room"
	TypeJoinRoom   = "join_room"
	TypeMessage    = "message"
	TypeTyping     = "typing"
)

var validate = validator.New()

type inboundEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createRoomPayload struct {
	Name      string `json:"name" validate:"required,min=1,max=50"`
	IsPrivate bool   `json:"isPrivate"`
	Password  string `json:"password"`
}

type joinRoomPayload struct {
	RoomID   string `json:"roomId" validate:"required,uuid4"`
	Password string `json:"password"`
}

type messagePayload struct {
	RoomID  string `json:"roomId" validate:"required,uuid4"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type typingPayload struct {
	RoomID   string `json:"roomId" validate:"required,uuid4"`
	IsTyping bool   `json:"isTyping"`
}

// decodeCommand turns a raw frame into a typed, validated command.
// This is the pre-dispatch validation boundary: malformed events are
// rejected here and never reach the coordinator.
func decodeCommand(raw []byte) (domain.Command, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	switch env.Type {
	case TypeCreateRoom:
		var p createRoomPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return nil, err
		}
		return domain.CreateRoomCommand{
			Name:     p.Name,
			Private:  p.IsPrivate,
			Password: p.Password,
		}, nil
	case TypeJoinRoom:
		var p joinRoomPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return nil, err
		}
		return domain.JoinRoomCommand{
			RoomID:   domain.RoomID(p.RoomID),
			Password: p.Password,
		}, nil
	case TypeMessage:
		var p messagePayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return nil, err
		}
		return domain.PostMessageCommand{
			RoomID:    domain.RoomID(p.RoomID),
			Content:   p.Content,
			CreatedAt: time.Now().UTC(),
		}, nil
	case TypeTyping:
		var p typingPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return nil, err
		}
		return domain.SetTypingCommand{
			RoomID: domain.RoomID(p.RoomID),
			Typing: p.IsTyping,
		}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

func unmarshalPayload(raw json.RawMessage, p any) error {
	if err := json.Unmarshal(raw, p); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

type outboundEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// toEnvelope maps a domain event onto its wire shape; payloads match
// the vocabulary clients expect (a bare message for `message`, the
// leaver's session id for `user_left`, and so on).
func toEnvelope(e event.DomainEvent) outboundEnvelope {
	var payload any
	switch evt := e.(type) {
	case event.RoomListing:
		payload = evt.Rooms
	case event.RoomJoined:
		payload = evt
	case event.RoomError:
		payload = evt.Reason
	case event.MessagePosted:
		payload = evt.Message
	case event.UserJoined:
		payload = evt.Occupant
	case event.UserLeft:
		payload = evt.SessionID
	case event.UserTyping:
		payload = evt
	default:
		payload = evt
	}
	return outboundEnvelope{Type: e.EventName(), Payload: payload}
}
