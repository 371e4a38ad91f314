package event

import (
	"couple-chat/domain"
)

// DomainEvent is what sinks consume. Every event belongs to exactly one room.
type DomainEvent interface {
	RoomID() domain.RoomID
}

// MessageReceived is delivered to every member of a room except the
// connection the message came from. Payload holds the client's bytes verbatim.
type MessageReceived struct {
	Room    domain.RoomID
	Origin  domain.ConnectionID
	Message domain.Message
	Payload []byte
}

func (m MessageReceived) RoomID() domain.RoomID {
	return m.Room
}
