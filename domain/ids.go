// Package domain contains core concepts of the chat system.
// This file defines the identifiers shared by every layer.
// No runtime, network, or UI logic should be added here.
package domain

import "github.com/google/uuid"

// UserID is the opaque identifier a client registers under.
type UserID string

// RoomID is the opaque conversation identifier, one room per couple.
type RoomID string

// ConnectionID identifies one live client connection for its lifetime.
type ConnectionID string

func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}
