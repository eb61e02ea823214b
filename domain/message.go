// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event. Sender is a snapshot of
// the author's display name at creation time, not a live reference.
// System notices (join/leave) are transient broadcasts only and must
// never enter the history.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
	System    bool      `json:"isSystem,omitempty"`
}

func NewMessage(sender, content string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Sender:    sender,
		Content:   content,
		CreatedAt: at,
	}
}

const (
	MinMessageLength = 1
	MaxMessageLength = 2000
)
