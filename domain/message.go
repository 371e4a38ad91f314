// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"strings"
	"time"
)

// Message represents an immutable chat message as sent by a client.
type Message struct {
	Content   string
	ImageURL  string
	SenderID  UserID
	CreatedAt time.Time
}

// HasPayload reports whether the message carries text or an image.
// Whitespace alone does not count as content.
func (m Message) HasPayload() bool {
	return strings.TrimSpace(m.Content) != "" || strings.TrimSpace(m.ImageURL) != ""
}
